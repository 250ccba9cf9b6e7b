// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"tribune/internal/cache"
	"tribune/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	GetModeratedCategoryIDs(ctx context.Context, userID uint) ([]uint, error)
	AddModerator(ctx context.Context, categoryID, userID uint) error
	RemoveModerator(ctx context.Context, categoryID, userID uint) error
}

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.CacheAside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return r.db.WithContext(ctx).First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername returns nil without error when no user matches.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns nil without error when no user matches.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	if err == nil {
		cache.InvalidateUser(ctx, user.ID)
	}
	return err
}

// GetModeratedCategoryIDs returns the ids of every category the user
// moderates. Guests (userID 0) moderate nothing.
func (r *userRepository) GetModeratedCategoryIDs(ctx context.Context, userID uint) ([]uint, error) {
	if userID == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.CategoryModerator{}).
		Where("user_id = ?", userID).
		Pluck("category_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepository) AddModerator(ctx context.Context, categoryID, userID uint) error {
	err := r.db.WithContext(ctx).Create(&models.CategoryModerator{
		CategoryID: categoryID,
		UserID:     userID,
	}).Error
	if err == nil {
		cache.InvalidateUser(ctx, userID)
	}
	return err
}

func (r *userRepository) RemoveModerator(ctx context.Context, categoryID, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND user_id = ?", categoryID, userID).
		Delete(&models.CategoryModerator{}).Error
	if err == nil {
		cache.InvalidateUser(ctx, userID)
	}
	return err
}
