package models

import (
	"gorm.io/gorm"
)

type Guide struct {
	gorm.Model
	Name   string `json:"name"`
	Email  string `gorm:"uniqueIndex" json:"email"`
	Phone  string `json:"phone"`
	Bio    string `json:"bio"`
	Active bool   `json:"active"`
}
