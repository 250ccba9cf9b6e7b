package repository

import (
	"context"
	"time"

	"tribune/internal/models"

	"gorm.io/gorm"
)

// EventRepository defines the interface for topic event persistence
type EventRepository interface {
	Append(ctx context.Context, event *models.TopicEvent) error
	ListByTopic(ctx context.Context, topicID uint) ([]*models.TopicEvent, error)
}

// eventRepository implements EventRepository
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Append(ctx context.Context, event *models.TopicEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) ListByTopic(ctx context.Context, topicID uint) ([]*models.TopicEvent, error) {
	var events []*models.TopicEvent
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("timestamp ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
