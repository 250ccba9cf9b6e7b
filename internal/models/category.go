package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups topics. Moderator assignments live in CategoryModerator.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"cid"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	// TopicCount is not persisted; computed at query time
	TopicCount int            `gorm:"->" json:"topic_count"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
