package models

import "time"

// Topic event types. Append-only audit trail; an event exists only for
// calls that actually changed state.
const (
	EventSolve   = "solve"
	EventUnsolve = "unsolve"
)

// TopicEvent records who flipped a topic's solved state and when.
type TopicEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TopicID   uint      `gorm:"not null;index" json:"tid"`
	Type      string    `gorm:"not null" json:"type"`
	UserID    uint      `gorm:"not null" json:"uid"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}
