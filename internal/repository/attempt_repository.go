package repository

import (
	"context"
	"escape_room_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) WithTx(tx *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: tx}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

func (r *AttemptRepository) FindByID(ctx context.Context, id uint) (*model.Attempt, error) {
	return findOne[model.Attempt](r.DB.WithContext(ctx), "id = ?", id)
}

func (r *AttemptRepository) LockByID(ctx context.Context, id uint) (*model.Attempt, error) {
	return findOne[model.Attempt](forUpdate(r.DB.WithContext(ctx)), "id = ?", id)
}

// FindActive returns the most recently created attempt of the access.
func (r *AttemptRepository) FindActive(ctx context.Context, storyAccessID uint) (*model.Attempt, error) {
	return findLast[model.Attempt](r.DB.WithContext(ctx), "id", "story_access_id = ?", storyAccessID)
}

func (r *AttemptRepository) CountByAccess(ctx context.Context, storyAccessID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Attempt{}).
		Where("story_access_id = ?", storyAccessID).
		Count(&count).Error
	return count, err
}

// MarkFinished sets finish_date only while it is still null. It reports
// false when another writer finished the attempt first.
func (r *AttemptRepository) MarkFinished(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.Attempt{}).
		Where("id = ? AND finish_date IS NULL", id).
		Update("finish_date", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *AttemptRepository) CreateSubmission(ctx context.Context, submission *model.PasswordSubmission) error {
	return r.DB.WithContext(ctx).Create(submission).Error
}

func (r *AttemptRepository) ListSubmissions(ctx context.Context, attemptID uint) ([]model.PasswordSubmission, error) {
	return findMany[model.PasswordSubmission](r.DB.WithContext(ctx), "attempt_id = ?", attemptID)
}
