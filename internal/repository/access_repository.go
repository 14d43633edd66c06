package repository

import (
	"context"
	"escape_room_backend/internal/model"

	"gorm.io/gorm"
)

type AccessRepository struct {
	DB *gorm.DB
}

func NewAccessRepository(db *gorm.DB) *AccessRepository {
	return &AccessRepository{DB: db}
}

func (r *AccessRepository) WithTx(tx *gorm.DB) *AccessRepository {
	return &AccessRepository{DB: tx}
}

func (r *AccessRepository) Create(ctx context.Context, access *model.StoryAccess) error {
	return r.DB.WithContext(ctx).Create(access).Error
}

func (r *AccessRepository) FindByID(ctx context.Context, id uint) (*model.StoryAccess, error) {
	return findOne[model.StoryAccess](r.DB.WithContext(ctx), "id = ?", id)
}

func (r *AccessRepository) FindByUserAndStory(ctx context.Context, userID string, storyID uint) (*model.StoryAccess, error) {
	return findOne[model.StoryAccess](r.DB.WithContext(ctx), "user_id = ? AND story_id = ?", userID, storyID)
}

// FindByAttempt follows attempt -> story access with a join.
func (r *AccessRepository) FindByAttempt(ctx context.Context, attemptID uint) (*model.StoryAccess, error) {
	db := r.DB.WithContext(ctx).
		Select("story_accesses.*").
		Joins("JOIN attempts ON attempts.story_access_id = story_accesses.id AND attempts.deleted_at IS NULL")
	return findOne[model.StoryAccess](db, "attempts.id = ?", attemptID)
}

func (r *AccessRepository) LockByID(ctx context.Context, id uint) (*model.StoryAccess, error) {
	return findOne[model.StoryAccess](forUpdate(r.DB.WithContext(ctx)), "id = ?", id)
}

