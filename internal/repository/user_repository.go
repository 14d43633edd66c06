package repository

import (
	"context"
	"escape_room_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](r.DB.WithContext(ctx), "id = ?", id)
}

// FindByIdentifier looks a user up by email (case-insensitive) or username.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	return findOne[model.User](r.DB.WithContext(ctx),
		"LOWER(email) = LOWER(?) OR username = ?", identifier, identifier)
}

func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("LOWER(email) = LOWER(?) OR username = ?", email, username).
		Count(&count).Error
	return count > 0, err
}

// LockByID reads the user row with a write lock; call it inside a transaction.
func (r *UserRepository) LockByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](forUpdate(r.DB.WithContext(ctx)), "id = ?", id)
}

// DeductGold subtracts amount only if the balance covers it. It reports false
// when the balance was too low and nothing changed.
func (r *UserRepository) DeductGold(ctx context.Context, id string, amount int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND gold >= ?", id, amount).
		Update("gold", gorm.Expr("gold - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
