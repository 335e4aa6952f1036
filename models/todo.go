package models

import (
	"time"

	"gorm.io/gorm"
)

// Todo is a single list item. Every todo has exactly one owner; UserID must
// reference an existing User at creation time. CreatedAt doubles as the
// deadline timestamp, DoneAt is set when the item is marked complete.
type Todo struct {
	gorm.Model
	Text     string `gorm:"size:200;not null"`
	Complete bool
	UserID   uint `gorm:"not null"` // Owning user
	DoneAt   *time.Time
}
