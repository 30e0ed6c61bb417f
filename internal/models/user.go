package models

import (
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Role         string `gorm:"default:user" json:"role"`
	GoogleID     string `gorm:"index" json:"-"`
	Newsletter   bool   `json:"newsletter"`
}
