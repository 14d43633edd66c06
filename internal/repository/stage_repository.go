package repository

import (
	"context"
	"escape_room_backend/internal/model"

	"gorm.io/gorm"
)

type StageRepository struct {
	DB *gorm.DB
}

func NewStageRepository(db *gorm.DB) *StageRepository {
	return &StageRepository{DB: db}
}

func (r *StageRepository) WithTx(tx *gorm.DB) *StageRepository {
	return &StageRepository{DB: tx}
}

func (r *StageRepository) Create(ctx context.Context, stage *model.Stage) error {
	return r.DB.WithContext(ctx).Create(stage).Error
}

func (r *StageRepository) FindByID(ctx context.Context, id uint) (*model.Stage, error) {
	return findOne[model.Stage](r.DB.WithContext(ctx), "id = ?", id)
}

// FindFirst returns the lowest level stage of a story.
func (r *StageRepository) FindFirst(ctx context.Context, storyID uint) (*model.Stage, error) {
	return findFirst[model.Stage](r.DB.WithContext(ctx), "level", "story_id = ?", storyID)
}

// FindNext returns the stage at level+1 of the same story, nil after the last stage.
func (r *StageRepository) FindNext(ctx context.Context, stage *model.Stage) (*model.Stage, error) {
	return findOne[model.Stage](r.DB.WithContext(ctx),
		"story_id = ? AND level = ?", stage.StoryID, stage.Level+1)
}

func (r *StageRepository) ListByStory(ctx context.Context, storyID uint) ([]model.Stage, error) {
	var stages []model.Stage
	err := r.DB.WithContext(ctx).Where("story_id = ?", storyID).Order("level").Find(&stages).Error
	return stages, err
}

func (r *StageRepository) CountByStory(ctx context.Context, storyID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Stage{}).Where("story_id = ?", storyID).Count(&count).Error
	return count, err
}
