package usecase

import (
	"context"
	"log"

	authdomain "cleanagent-backend/internal/auth/domain"
	authrepository "cleanagent-backend/internal/auth/repository"
	"cleanagent-backend/internal/classify"
	cleandomain "cleanagent-backend/internal/clean/domain"
	cleandto "cleanagent-backend/internal/clean/dto"
	cleanrepository "cleanagent-backend/internal/clean/repository"
	"cleanagent-backend/internal/label"
)

const (
	minCount = 1
	maxCount = 100
)

type cleanUsecase struct {
	userRepo   authrepository.UserRepository
	runRepo    cleanrepository.RunRepository
	itemRepo   cleanrepository.ItemRepository
	fetcher    EmailFetcher
	classifier Classifier
	labeler    Labeler
}

func NewCleanUsecase(
	userRepo authrepository.UserRepository,
	runRepo cleanrepository.RunRepository,
	itemRepo cleanrepository.ItemRepository,
	fetcher EmailFetcher,
	classifier Classifier,
	labeler Labeler,
) CleanUsecase {
	return &cleanUsecase{
		userRepo:   userRepo,
		runRepo:    runRepo,
		itemRepo:   itemRepo,
		fetcher:    fetcher,
		classifier: classifier,
		labeler:    labeler,
	}
}

// Clean runs the full pipeline for one request: fetch, ingest, classify,
// label, retry once, roll up. The run record tracks the whole invocation;
// item records make ingestion idempotent across runs.
func (c *cleanUsecase) Clean(ctx context.Context, req *cleandto.CleanRequest) (*cleandto.CleanResponse, error) {
	user, err := c.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.Count < minCount || req.Count > maxCount {
		return nil, ErrInvalidCount
	}

	run := cleandomain.NewRun(user.ID, req.Count)
	if err := c.runRepo.Create(run); err != nil {
		return nil, err
	}
	if err := run.TransitionTo(cleandomain.RunStatusProcessing); err != nil {
		return nil, err
	}
	if err := c.runRepo.Update(run); err != nil {
		return nil, err
	}

	resp, err := c.execute(ctx, user, run, req)
	if err != nil {
		// Best-effort: record the failure without masking the original
		// error if the update itself fails
		if ferr := run.Finish(cleandomain.RunStatusFailed, err.Error()); ferr == nil {
			if uerr := c.runRepo.Update(run); uerr != nil {
				log.Printf("[Clean] Failed to mark run %s as FAILED: %v", run.ID, uerr)
			}
		}
		log.Printf("[Clean] Error in clean pipeline: %v", err)
		return nil, err
	}
	return resp, nil
}

func (c *cleanUsecase) execute(ctx context.Context, user *authdomain.User, run *cleandomain.Run, req *cleandto.CleanRequest) (*cleandto.CleanResponse, error) {
	log.Printf("[Clean] Fetching up to %d emails for %s", req.Count, user.Email)
	emails, err := c.fetcher.FetchEmails(ctx, user, req.Count)
	if err != nil {
		return nil, err
	}

	if len(emails) == 0 {
		if err := run.Finish(cleandomain.RunStatusCompleted, ""); err != nil {
			return nil, err
		}
		if err := c.runRepo.Update(run); err != nil {
			return nil, err
		}
		return &cleandto.CleanResponse{
			RunID:           run.ID,
			Message:         "No emails found",
			Email:           req.Email,
			RequestedCount:  req.Count,
			ActualCount:     0,
			Emails:          []cleandomain.RawMessage{},
			Classifications: []classify.Outcome{},
			Status:          cleandto.StatusNoEmails,
		}, nil
	}

	// Ingestion: a message tracked for this user by any prior run is
	// skipped, FAILED ones included
	existing, err := c.itemRepo.FindByUser(user.ID)
	if err != nil {
		return nil, err
	}
	tracked := make(map[string]bool, len(existing))
	for _, item := range existing {
		tracked[item.GmailMessageID] = true
	}

	var itemsToProcess []*cleandomain.Item
	var emailsToProcess []cleandomain.RawMessage
	for _, email := range emails {
		if email.ID == "" || tracked[email.ID] {
			continue
		}
		itemsToProcess = append(itemsToProcess, cleandomain.NewItem(user.ID, run.ID, email.ID))
		emailsToProcess = append(emailsToProcess, email)
	}
	if err := c.itemRepo.CreateBatch(itemsToProcess); err != nil {
		return nil, err
	}

	if len(itemsToProcess) == 0 {
		if err := run.Finish(cleandomain.RunStatusCompleted, ""); err != nil {
			return nil, err
		}
		if err := c.runRepo.Update(run); err != nil {
			return nil, err
		}
		return c.buildResponse(run, req, emails,
			"All fetched emails were already processed (no new work needed)")
	}

	// Claim work before classification
	for _, item := range itemsToProcess {
		if err := item.Claim(); err != nil {
			return nil, err
		}
	}
	if err := c.itemRepo.UpdateBatch(itemsToProcess); err != nil {
		return nil, err
	}

	log.Printf("[Clean] Classifying %d new emails (run %s)", len(emailsToProcess), run.ID)
	outcomes := c.classifier.Classify(ctx, emailsToProcess)
	itemsByID := indexItems(itemsToProcess)
	c.recordOutcomes(outcomes, itemsByID, "LLM classification error")
	if err := c.itemRepo.UpdateBatch(itemsToProcess); err != nil {
		return nil, err
	}

	labelingErrMsg := c.labelAndReconcile(ctx, user, itemsToProcess, outcomes, itemsByID)
	if err := c.itemRepo.UpdateBatch(itemsToProcess); err != nil {
		return nil, err
	}

	// One retry pass for items that failed with an attempt left
	var retryItems []*cleandomain.Item
	for _, item := range itemsToProcess {
		if item.Retryable() {
			retryItems = append(retryItems, item)
		}
	}
	if len(retryItems) > 0 {
		if err := c.retryFailed(ctx, user, retryItems, emailsToProcess); err != nil {
			return nil, err
		}
	}

	if err := run.Finish(cleandomain.RunStatusCompleted, labelingErrMsg); err != nil {
		return nil, err
	}
	if err := c.runRepo.Update(run); err != nil {
		return nil, err
	}

	return c.buildResponse(run, req, emails,
		"Emails fetched, classified, and labeled successfully")
}

// recordOutcomes copies classification results onto the items. Items
// stay PROCESSING until labeling settles them; an ERROR outcome leaves
// its reason on the item so a later failure keeps the root cause.
func (c *cleanUsecase) recordOutcomes(outcomes []classify.Outcome, itemsByID map[string]*cleandomain.Item, errorFallback string) {
	for _, outcome := range outcomes {
		item, ok := itemsByID[outcome.EmailID]
		if !ok {
			continue
		}
		item.Category = string(outcome.Category)
		item.Confidence = outcome.Confidence
		item.Reason = outcome.Reason
		if outcome.Category == classify.CategoryError {
			if outcome.Reason != "" {
				item.LastError = outcome.Reason
			} else {
				item.LastError = errorFallback
			}
		}
	}
}

// labelAndReconcile applies labels and settles every claimed item to
// SUCCESS or FAILED. Returns the labeling session error message, empty
// when the session worked (individual label failures are not fatal to
// the run).
func (c *cleanUsecase) labelAndReconcile(ctx context.Context, user *authdomain.User, items []*cleandomain.Item, outcomes []classify.Outcome, itemsByID map[string]*cleandomain.Item) string {
	result, err := c.labeler.ApplyLabels(ctx, user, outcomes)
	labelingErrMsg := ""
	if err != nil {
		log.Printf("[Clean] Error applying labels: %v", err)
		labelingErrMsg = err.Error()
		result = &label.Result{FailedCount: len(outcomes)}
	}

	successIDs := make(map[string]bool)
	errByID := make(map[string]string)
	for _, r := range result.Results {
		if r.EmailID == "" {
			continue
		}
		if r.Success {
			successIDs[r.EmailID] = true
		} else {
			errByID[r.EmailID] = r.Error
		}
	}

	for _, item := range items {
		if successIDs[item.GmailMessageID] {
			item.MarkSuccess()
			continue
		}
		if _, failed := errByID[item.GmailMessageID]; failed || labelingErrMsg != "" {
			item.MarkFailed(firstNonEmpty(labelingErrMsg, errByID[item.GmailMessageID], item.LastError))
		}
	}
	return labelingErrMsg
}

// retryFailed gives each failed item one more classify+label cycle
func (c *cleanUsecase) retryFailed(ctx context.Context, user *authdomain.User, retryItems []*cleandomain.Item, emails []cleandomain.RawMessage) error {
	retryIDs := make(map[string]bool, len(retryItems))
	for _, item := range retryItems {
		retryIDs[item.GmailMessageID] = true
	}
	var retryEmails []cleandomain.RawMessage
	for _, email := range emails {
		if retryIDs[email.ID] {
			retryEmails = append(retryEmails, email)
		}
	}

	log.Printf("[Clean] Retrying %d failed emails", len(retryItems))
	for _, item := range retryItems {
		if err := item.Claim(); err != nil {
			return err
		}
	}
	if err := c.itemRepo.UpdateBatch(retryItems); err != nil {
		return err
	}

	outcomes := c.classifier.Classify(ctx, retryEmails)
	itemsByID := indexItems(retryItems)
	c.recordOutcomes(outcomes, itemsByID, "LLM classification error (retry)")
	if err := c.itemRepo.UpdateBatch(retryItems); err != nil {
		return err
	}

	result, err := c.labeler.ApplyLabels(ctx, user, outcomes)
	retryErrMsg := ""
	if err != nil {
		log.Printf("[Clean] Error applying labels on retry: %v", err)
		retryErrMsg = err.Error()
		result = &label.Result{}
	}

	successIDs := make(map[string]bool)
	errByID := make(map[string]string)
	for _, r := range result.Results {
		if r.EmailID == "" {
			continue
		}
		if r.Success {
			successIDs[r.EmailID] = true
		} else {
			errByID[r.EmailID] = r.Error
		}
	}

	for _, item := range retryItems {
		if successIDs[item.GmailMessageID] {
			item.MarkSuccess()
		} else {
			item.MarkFailed(firstNonEmpty(retryErrMsg, errByID[item.GmailMessageID], item.LastError, "Retry failed"))
		}
	}
	return c.itemRepo.UpdateBatch(retryItems)
}

// buildResponse rolls up over all fetched emails, not just this run's
// new items, so already-processed messages show in the summary too
func (c *cleanUsecase) buildResponse(run *cleandomain.Run, req *cleandto.CleanRequest, emails []cleandomain.RawMessage, message string) (*cleandto.CleanResponse, error) {
	fetchedIDs := make([]string, 0, len(emails))
	for _, email := range emails {
		if email.ID != "" {
			fetchedIDs = append(fetchedIDs, email.ID)
		}
	}

	items, err := c.itemRepo.FindByUserAndMessageIDs(run.UserID, fetchedIDs)
	if err != nil {
		return nil, err
	}

	classifications := make([]classify.Outcome, 0, len(items))
	labeling := &label.Result{Results: make([]label.ItemResult, 0, len(items))}
	for _, item := range items {
		category := classify.Category(item.Category)
		if item.Category == "" {
			category = classify.CategoryUnknown
		}
		classifications = append(classifications, classify.Outcome{
			EmailID:    item.GmailMessageID,
			Category:   category,
			Confidence: item.Confidence,
			Reason:     firstNonEmpty(item.Reason, item.LastError),
		})

		itemResult := label.ItemResult{
			EmailID: item.GmailMessageID,
			Label:   string(category),
			Success: item.Status == cleandomain.ItemStatusSuccess,
		}
		if !itemResult.Success {
			itemResult.Error = firstNonEmpty(item.LastError, "Failed")
		}
		labeling.Results = append(labeling.Results, itemResult)
		labeling.Total++
		if itemResult.Success {
			labeling.SuccessCount++
		} else {
			labeling.FailedCount++
		}
	}

	return &cleandto.CleanResponse{
		RunID:           run.ID,
		Message:         message,
		Email:           req.Email,
		RequestedCount:  req.Count,
		ActualCount:     len(fetchedIDs),
		Emails:          emails,
		Classifications: classifications,
		Summary:         classify.Summarize(classifications),
		Labeling:        labeling,
		Status:          cleandto.StatusCompleted,
	}, nil
}

func indexItems(items []*cleandomain.Item) map[string]*cleandomain.Item {
	byID := make(map[string]*cleandomain.Item, len(items))
	for _, item := range items {
		byID[item.GmailMessageID] = item
	}
	return byID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
