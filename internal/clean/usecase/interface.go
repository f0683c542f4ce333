package usecase

import (
	"context"
	"errors"

	authdomain "cleanagent-backend/internal/auth/domain"
	"cleanagent-backend/internal/classify"
	cleandomain "cleanagent-backend/internal/clean/domain"
	cleandto "cleanagent-backend/internal/clean/dto"
	"cleanagent-backend/internal/label"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidCount = errors.New("email count must be between 1 and 100")
)

type CleanUsecase interface {
	Clean(ctx context.Context, req *cleandto.CleanRequest) (*cleandto.CleanResponse, error)
}

// EmailFetcher pulls the newest inbox messages for a user
type EmailFetcher interface {
	FetchEmails(ctx context.Context, user *authdomain.User, count int) ([]cleandomain.RawMessage, error)
}

// Classifier assigns a taxonomy category to each email. It never
// fails as a whole; per-batch failures surface as ERROR outcomes.
type Classifier interface {
	Classify(ctx context.Context, emails []cleandomain.RawMessage) []classify.Outcome
}

// Labeler applies classification outcomes as Gmail labels. An error
// return means the labeling session itself could not be opened and
// nothing was labeled.
type Labeler interface {
	ApplyLabels(ctx context.Context, user *authdomain.User, outcomes []classify.Outcome) (*label.Result, error)
}
