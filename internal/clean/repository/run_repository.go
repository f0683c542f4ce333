package repository

import (
	"cleanagent-backend/internal/clean/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(run *domain.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	return r.db.Create(run).Error
}

func (r *runRepository) Update(run *domain.Run) error {
	return r.db.Save(run).Error
}
