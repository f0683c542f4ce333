package repository

import (
	"cleanagent-backend/internal/clean/domain"
)

type RunRepository interface {
	Create(run *domain.Run) error
	Update(run *domain.Run) error
}

type ItemRepository interface {
	CreateBatch(items []*domain.Item) error
	Update(item *domain.Item) error
	UpdateBatch(items []*domain.Item) error
	// FindByUser returns every item ever tracked for the user across
	// all runs
	FindByUser(userID string) ([]*domain.Item, error)
	FindByUserAndMessageIDs(userID string, messageIDs []string) ([]*domain.Item, error)
}
