package models

import (
	"time"

	"gorm.io/gorm"
)

// HiddenContentPlaceholder replaces mod-only post content in views rendered
// for unprivileged viewers. View-time only; stored content is untouched.
const HiddenContentPlaceholder = "[[topic:post-is-mod-only]]"

// Post represents a single post inside a topic.
//
// UserID is the true author and is always stored, whatever the Anonymous
// flag says; Anonymous only instructs the display layer to mask identity.
// ModOnly restricts visibility to admins and moderators and is mutable by
// privileged roles only.
type Post struct {
	ID         uint           `gorm:"primaryKey" json:"pid"`
	TopicID    uint           `gorm:"not null;index" json:"tid"`
	CategoryID uint           `gorm:"not null;index" json:"cid"`
	UserID     uint           `gorm:"not null;index" json:"uid"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Anonymous  Flag           `gorm:"not null;default:false" json:"anonymous"`
	ModOnly    Flag           `gorm:"not null;default:false" json:"modOnly"`
	User       *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsOwner reports whether uid is the true author of the post. Guests
// (uid 0) own nothing.
func (p *Post) IsOwner(uid uint) bool {
	return uid != 0 && p.UserID == uid
}

// PostView is a post shaped for one viewer: the stored record plus the
// per-viewer display facts the presentation layer masks identities with.
type PostView struct {
	Post
	SelfPost     bool `json:"selfPost"`
	IsAdminOrMod bool `json:"isAdminOrMod"`
}
