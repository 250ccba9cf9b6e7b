// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a forum account.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"uid"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	// Signature is appended to the user's posts at render time. It is
	// cleared from mod-only post views for unprivileged viewers.
	Signature   string         `json:"signature"`
	IsAdmin     bool           `gorm:"default:false" json:"is_admin"`
	IsGlobalMod bool           `gorm:"default:false" json:"is_global_mod"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// CategoryModerator grants a user moderator privileges scoped to one category.
type CategoryModerator struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"not null;index:idx_cat_mod,unique" json:"cid"`
	UserID     uint      `gorm:"not null;index:idx_cat_mod,unique" json:"uid"`
	CreatedAt  time.Time `json:"created_at"`
}
