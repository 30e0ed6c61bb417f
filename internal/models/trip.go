package models

import (
	"gorm.io/gorm"
)

type Trip struct {
	gorm.Model
	Name           string `json:"name"`
	Slug           string `gorm:"uniqueIndex" json:"slug"`
	Description    string `json:"description"`
	Region         string `json:"region"`
	Difficulty     string `json:"difficulty"` // easy, moderate, hard
	DurationDays   int    `json:"duration_days"`
	BasePriceCents int64  `json:"base_price_cents"`
	Active         bool   `json:"active"`
	GuideID        *uint  `json:"guide_id,omitempty"`
	Guide          *Guide `json:"guide,omitempty"`
}
