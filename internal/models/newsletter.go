package models

import (
	"time"

	"gorm.io/gorm"
)

type Subscriber struct {
	gorm.Model
	Email            string `gorm:"uniqueIndex" json:"email"`
	Name             string `json:"name"`
	UnsubscribeToken string `gorm:"uniqueIndex" json:"-"`
	Active           bool   `json:"active"`
}

type Campaign struct {
	gorm.Model
	Subject string     `json:"subject"`
	Body    string     `json:"body"`
	SentAt  *time.Time `json:"sent_at,omitempty"`
}

// CampaignDelivery tracks the outcome of sending one campaign to one
// subscriber. Rows are created when the campaign is queued and flagged
// by the consumer as each email goes out.
type CampaignDelivery struct {
	gorm.Model
	CampaignID   uint       `gorm:"index" json:"campaign_id"`
	SubscriberID uint       `gorm:"index" json:"subscriber_id"`
	Sent         bool       `json:"sent"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	Error        string     `json:"error,omitempty"`
}
