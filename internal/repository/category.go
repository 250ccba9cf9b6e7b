package repository

import (
	"context"

	"tribune/internal/cache"
	"tribune/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	List(ctx context.Context, limit, offset int) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
	ListModerators(ctx context.Context, categoryID uint) ([]*models.User, error)
}

// categoryRepository implements CategoryRepository
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := cache.CacheAside(ctx, cache.CategoryKey(id), &category, cache.CategoryTTL, func() error {
		return r.withTopicCount(r.db.WithContext(ctx)).First(&category, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.withTopicCount(r.db.WithContext(ctx)).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	err := r.db.WithContext(ctx).Save(category).Error
	if err == nil {
		cache.InvalidateCategory(ctx, category.ID)
	}
	return err
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Delete(&models.Category{}, id).Error
	if err == nil {
		cache.InvalidateCategory(ctx, id)
	}
	return err
}

func (r *categoryRepository) ListModerators(ctx context.Context, categoryID uint) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN category_moderators ON category_moderators.user_id = users.id").
		Where("category_moderators.category_id = ?", categoryID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *categoryRepository) withTopicCount(db *gorm.DB) *gorm.DB {
	return db.Select("categories.*, (SELECT COUNT(*) FROM topics WHERE topics.category_id = categories.id AND topics.deleted_at IS NULL) AS topic_count")
}
