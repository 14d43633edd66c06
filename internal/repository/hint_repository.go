package repository

import (
	"context"
	"escape_room_backend/internal/model"

	"gorm.io/gorm"
)

type HintRepository struct {
	DB *gorm.DB
}

func NewHintRepository(db *gorm.DB) *HintRepository {
	return &HintRepository{DB: db}
}

func (r *HintRepository) WithTx(tx *gorm.DB) *HintRepository {
	return &HintRepository{DB: tx}
}

func (r *HintRepository) Create(ctx context.Context, hint *model.Hint) error {
	return r.DB.WithContext(ctx).Create(hint).Error
}

// FindByTrigger returns the hint of the stage whose trigger equals the given
// string exactly. Two hints sharing a trigger on one stage is a content bug
// and surfaces as util.ErrAmbiguousResult.
func (r *HintRepository) FindByTrigger(ctx context.Context, stageID uint, trigger string) (*model.Hint, error) {
	return findOne[model.Hint](r.DB.WithContext(ctx), "stage_id = ? AND `trigger` = ?", stageID, trigger)
}

func (r *HintRepository) FindUnlock(ctx context.Context, attemptID, hintID uint) (*model.HintUnlock, error) {
	return findOne[model.HintUnlock](r.DB.WithContext(ctx), "attempt_id = ? AND hint_id = ?", attemptID, hintID)
}

func (r *HintRepository) CreateUnlock(ctx context.Context, unlock *model.HintUnlock) error {
	return r.DB.WithContext(ctx).Create(unlock).Error
}

// ListUnlocked returns the hints revealed during an attempt in unlock order.
func (r *HintRepository) ListUnlocked(ctx context.Context, attemptID uint) ([]model.Hint, error) {
	var hints []model.Hint
	err := r.DB.WithContext(ctx).
		Select("hints.*").
		Joins("JOIN hint_unlocks ON hint_unlocks.hint_id = hints.id AND hint_unlocks.deleted_at IS NULL").
		Where("hint_unlocks.attempt_id = ?", attemptID).
		Order("hint_unlocks.id").
		Find(&hints).Error
	return hints, err
}
