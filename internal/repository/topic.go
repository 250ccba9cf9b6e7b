package repository

import (
	"context"

	"tribune/internal/cache"
	"tribune/internal/models"

	"gorm.io/gorm"
)

// TopicRepository defines the interface for topic data operations
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) error
	GetByID(ctx context.Context, id uint) (*models.Topic, error)
	GetSorted(ctx context.Context, categoryID uint, limit, offset int, sort string) ([]*models.Topic, error)
	SetSolved(ctx context.Context, id uint, from, to int) (bool, error)
	Update(ctx context.Context, topic *models.Topic) error
	Delete(ctx context.Context, id uint) error
}

// topicRepository implements TopicRepository
type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, topic *models.Topic) error {
	err := r.db.WithContext(ctx).Create(topic).Error
	if err == nil {
		cache.InvalidateCategory(ctx, topic.CategoryID)
	}
	return err
}

func (r *topicRepository) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	err := cache.CacheAside(ctx, cache.TopicKey(id), &topic, cache.TopicTTL, func() error {
		return r.withPostCount(r.db.WithContext(ctx)).
			Preload("User").
			First(&topic, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// GetSorted lists topics newest-activity-first. Solved topics never appear,
// whatever the sort: the listing is a queue of open work and a solved topic
// has left the queue. Fetch it directly by id to read it.
func (r *topicRepository) GetSorted(ctx context.Context, categoryID uint, limit, offset int, sort string) ([]*models.Topic, error) {
	var topics []*models.Topic
	base := r.withPostCount(r.db.WithContext(ctx)).
		Preload("User").
		Where("solved = ?", models.TopicUnsolved)
	if categoryID != 0 {
		base = base.Where("category_id = ?", categoryID)
	}
	err := r.applySort(base, sort).
		Limit(limit).
		Offset(offset).
		Find(&topics).Error
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// SetSolved flips the solved state with a compare-and-set: the UPDATE only
// applies while the row still holds `from`, so two racing calls cannot both
// observe a transition. Returns whether this call changed the row.
func (r *topicRepository) SetSolved(ctx context.Context, id uint, from, to int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ? AND solved = ?", id, from).
		Update("solved", to)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		cache.InvalidateTopic(ctx, id)
		return true, nil
	}
	return false, nil
}

func (r *topicRepository) Update(ctx context.Context, topic *models.Topic) error {
	err := r.db.WithContext(ctx).Save(topic).Error
	if err == nil {
		cache.InvalidateTopic(ctx, topic.ID)
	}
	return err
}

func (r *topicRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Delete(&models.Topic{}, id).Error
	if err == nil {
		cache.InvalidateTopic(ctx, id)
	}
	return err
}

func (r *topicRepository) applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case "old":
		return db.Order("topics.created_at ASC")
	case "posts":
		return db.Order("post_count DESC, topics.created_at DESC")
	default: // "recent" and anything unrecognized
		return db.Order("topics.updated_at DESC")
	}
}

func (r *topicRepository) withPostCount(db *gorm.DB) *gorm.DB {
	return db.Select("topics.*, (SELECT COUNT(*) FROM posts WHERE posts.topic_id = topics.id AND posts.deleted_at IS NULL) AS post_count")
}
