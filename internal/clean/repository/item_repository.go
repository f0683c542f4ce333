package repository

import (
	"cleanagent-backend/internal/clean/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) CreateBatch(items []*domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
	}
	return r.db.Create(items).Error
}

func (r *itemRepository) Update(item *domain.Item) error {
	return r.db.Save(item).Error
}

func (r *itemRepository) UpdateBatch(items []*domain.Item) error {
	for _, item := range items {
		if err := r.db.Save(item).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *itemRepository) FindByUser(userID string) ([]*domain.Item, error) {
	var items []*domain.Item
	if err := r.db.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) FindByUserAndMessageIDs(userID string, messageIDs []string) ([]*domain.Item, error) {
	if len(messageIDs) == 0 {
		return []*domain.Item{}, nil
	}
	var items []*domain.Item
	if err := r.db.Where("user_id = ? AND gmail_message_id IN ?", userID, messageIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
