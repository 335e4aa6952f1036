package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name     string `gorm:"unique;not null"`
	Email    string // uniqueness is enforced by the user service, empty is allowed
	Password string `gorm:"not null" json:"-"` // Don't expose password hash
	Active   bool   `gorm:"default:true"`
	Roles    []Role `gorm:"many2many:roles_users;"` // Many-to-Many relationship with Role
	Todos    []Todo // One-to-Many relationship with Todo (user owns todos)
}
