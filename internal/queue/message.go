// Package queue defines message payloads exchanged over the message broker.
package queue

// CampaignMessage is published once per subscriber when a newsletter
// campaign is sent. It carries everything the consumer needs to build
// and deliver the email without querying the primary database.
type CampaignMessage struct {
	CampaignID       uint   `json:"campaign_id"`
	DeliveryID       uint   `json:"delivery_id"`
	SubscriberID     uint   `json:"subscriber_id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Subject          string `json:"subject"`
	Body             string `json:"body"`
	UnsubscribeToken string `json:"unsubscribe_token"`
	QueuedAt         string `json:"queued_at"`
}
