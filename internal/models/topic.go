package models

import (
	"time"

	"gorm.io/gorm"
)

// Topic kinds. Solved tracking only applies to questions.
const (
	TopicKindQuestion = "question"
	TopicKindNote     = "note"
)

// Solved states. Persisted as 0/1 to match the wire contract.
const (
	TopicUnsolved = 0
	TopicSolved   = 1
)

// Topic represents a discussion thread. UserID is the creator of the first
// post and never changes.
type Topic struct {
	ID         uint   `gorm:"primaryKey" json:"tid"`
	CategoryID uint   `gorm:"not null;index" json:"cid"`
	UserID     uint   `gorm:"not null;index" json:"uid"`
	Title      string `gorm:"not null" json:"title"`
	Kind       string `gorm:"not null;default:note" json:"kind"`
	Solved     int    `gorm:"not null;default:0" json:"solved"`
	// PostCount is not persisted; computed at query time
	PostCount int            `gorm:"->" json:"post_count"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsQuestion reports whether solved tracking applies to this topic.
func (t *Topic) IsQuestion() bool {
	return t.Kind == TopicKindQuestion
}

// IsOwner reports whether uid created the topic.
func (t *Topic) IsOwner(uid uint) bool {
	return uid != 0 && t.UserID == uid
}

// SolvedTransition is the outcome of applying the two-state solved machine.
// Changed is the single signal event emission is gated on: a transition
// that observes the target state already in place yields Changed=false and
// must produce no event.
type SolvedTransition struct {
	Changed bool
	State   int
}

// TransitionSolved applies the Unsolved<->Solved machine from current to
// target. Both directions are symmetric; an already-satisfied target is an
// idempotent no-op.
func TransitionSolved(current, target int) SolvedTransition {
	if current == target {
		return SolvedTransition{Changed: false, State: current}
	}
	return SolvedTransition{Changed: true, State: target}
}

// SolveResult mirrors the topic tools response shape: the persisted 0/1
// value plus its boolean reading, and any events the call appended.
type SolveResult struct {
	Solved   int          `json:"solved"`
	IsSolved bool         `json:"isSolved"`
	Events   []TopicEvent `json:"events,omitempty"`
}
