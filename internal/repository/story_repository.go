package repository

import (
	"context"
	"escape_room_backend/internal/model"

	"gorm.io/gorm"
)

type StoryRepository struct {
	DB *gorm.DB
}

func NewStoryRepository(db *gorm.DB) *StoryRepository {
	return &StoryRepository{DB: db}
}

func (r *StoryRepository) WithTx(tx *gorm.DB) *StoryRepository {
	return &StoryRepository{DB: tx}
}

func (r *StoryRepository) Create(ctx context.Context, story *model.Story) error {
	return r.DB.WithContext(ctx).Create(story).Error
}

func (r *StoryRepository) FindByID(ctx context.Context, id uint) (*model.Story, error) {
	return findOne[model.Story](r.DB.WithContext(ctx), "id = ?", id)
}

func (r *StoryRepository) List(ctx context.Context) ([]model.Story, error) {
	var stories []model.Story
	err := r.DB.WithContext(ctx).Order("id").Find(&stories).Error
	return stories, err
}
