package label

import (
	"context"
	"fmt"
	"log"
	"sort"

	authdomain "cleanagent-backend/internal/auth/domain"
	"cleanagent-backend/internal/classify"
)

// batchModify accepts at most this many message IDs per call
const gmailBatchLimit = 1000

// Session is one authenticated Gmail labeling session for one user
type Session interface {
	// EnsureLabel returns the label ID for a category, creating the
	// label if it does not exist yet
	EnsureLabel(ctx context.Context, category classify.Category) (string, error)
	// BatchApplyLabel adds the label to every listed message in one call
	BatchApplyLabel(ctx context.Context, labelID string, messageIDs []string) error
}

// SessionProvider opens labeling sessions. The Gmail service implements
// this; tests substitute fakes.
type SessionProvider interface {
	LabelSession(ctx context.Context, user *authdomain.User) (Session, error)
}

// ItemResult records the labeling outcome of one message
type ItemResult struct {
	EmailID string `json:"email_id"`
	Label   string `json:"label"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Result is the rollup of one labeling pass
type Result struct {
	SuccessCount int          `json:"success_count"`
	FailedCount  int          `json:"failed_count"`
	Total        int          `json:"total"`
	Results      []ItemResult `json:"results"`
}

// Engine applies classification outcomes to Gmail as labels
type Engine struct {
	provider  SessionProvider
	chunkSize int
}

func NewEngine(provider SessionProvider) *Engine {
	return &Engine{provider: provider, chunkSize: gmailBatchLimit}
}

// ApplyLabels labels every classified message for the user. Messages
// are grouped by label so each Gmail call covers one label; a failure
// for one label or chunk marks only its own messages as failed. An
// error return means nothing was labeled at all (the session could not
// be opened).
func (e *Engine) ApplyLabels(ctx context.Context, user *authdomain.User, outcomes []classify.Outcome) (*Result, error) {
	session, err := e.provider.LabelSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to get Gmail session for labeling: %w", err)
	}

	// Group message IDs by label name, keeping first-seen order inside
	// each group
	idsByLabel := make(map[string][]string)
	categoryByLabel := make(map[string]classify.Category)
	for _, outcome := range outcomes {
		if outcome.EmailID == "" {
			continue
		}
		name := NameFor(outcome.Category)
		idsByLabel[name] = append(idsByLabel[name], outcome.EmailID)
		if _, seen := categoryByLabel[name]; !seen {
			categoryByLabel[name] = outcome.Category
		}
	}

	labelNames := make([]string, 0, len(idsByLabel))
	for name := range idsByLabel {
		labelNames = append(labelNames, name)
	}
	sort.Strings(labelNames)

	result := &Result{Results: make([]ItemResult, 0, len(outcomes))}

	for _, name := range labelNames {
		messageIDs := idsByLabel[name]

		category := categoryByLabel[name]
		if !classify.IsValid(category) {
			category = classify.CategoryUnknown
		}
		labelID, err := session.EnsureLabel(ctx, category)
		if err != nil || labelID == "" {
			log.Printf("[Label] No label ID for '%s', skipping %d emails: %v", name, len(messageIDs), err)
			for _, id := range messageIDs {
				result.record(ItemResult{
					EmailID: id,
					Label:   name,
					Success: false,
					Error:   fmt.Sprintf("Label ID not found for %s", name),
				})
			}
			continue
		}

		for start := 0; start < len(messageIDs); start += e.chunkSize {
			end := start + e.chunkSize
			if end > len(messageIDs) {
				end = len(messageIDs)
			}
			chunk := messageIDs[start:end]

			if err := session.BatchApplyLabel(ctx, labelID, chunk); err != nil {
				log.Printf("[Label] Error applying label '%s' to batch: %v", name, err)
				for _, id := range chunk {
					result.record(ItemResult{EmailID: id, Label: name, Success: false, Error: err.Error()})
				}
				continue
			}

			for _, id := range chunk {
				result.record(ItemResult{EmailID: id, Label: name, Success: true})
			}
			log.Printf("[Label] Applied label '%s' to %d emails", name, len(chunk))
		}
	}

	log.Printf("[Label] Labeling complete: %d succeeded, %d failed", result.SuccessCount, result.FailedCount)
	return result, nil
}

func (r *Result) record(item ItemResult) {
	r.Results = append(r.Results, item)
	r.Total++
	if item.Success {
		r.SuccessCount++
	} else {
		r.FailedCount++
	}
}
