package models

import "gorm.io/gorm"

// Role names are matched exactly by the access-control checks; the
// distinguished name "admin" unlocks the administrative surface.
type Role struct {
	gorm.Model
	Name        string `gorm:"unique;not null"`
	Description string
	Users       []User `gorm:"many2many:roles_users;"` // Many-to-Many relationship back to User
}
