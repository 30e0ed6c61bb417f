package handlers

import (
	"context"
	"log"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/trekkingar/trekkingar-api/internal/auth"
	"github.com/trekkingar/trekkingar-api/internal/models"
	"github.com/trekkingar/trekkingar-api/internal/queue"
	"gorm.io/gorm"
)

type NewsletterHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	publisher   queue.Publisher
}

func NewNewsletterHandler(db *gorm.DB, authHandler *auth.AuthHandler, publisher queue.Publisher) *NewsletterHandler {
	return &NewsletterHandler{db: db, authHandler: authHandler, publisher: publisher}
}

type SubscribeRequest struct {
	Body struct {
		Email string `json:"email" format:"email" required:"true"`
		Name  string `json:"name"`
	}
}

type SubscribeOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *NewsletterHandler) HandleSubscribe(ctx context.Context, input *SubscribeRequest) (*SubscribeOutput, error) {
	var subscriber models.Subscriber
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.Subscriber{Email: input.Body.Email}).FirstOrInit(&subscriber).Error; err != nil {
			return err
		}
		if input.Body.Name != "" {
			subscriber.Name = input.Body.Name
		}
		if subscriber.UnsubscribeToken == "" {
			subscriber.UnsubscribeToken = uuid.NewString()
		}
		subscriber.Active = true
		return tx.Save(&subscriber).Error
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to subscribe: " + err.Error())
	}

	res := &SubscribeOutput{}
	res.Body.Message = "Subscribed"
	return res, nil
}

type UnsubscribeRequest struct {
	Token string `query:"token" required:"true" doc:"Unsubscribe token from the email footer"`
}

func (h *NewsletterHandler) HandleUnsubscribe(ctx context.Context, input *UnsubscribeRequest) (*SubscribeOutput, error) {
	var subscriber models.Subscriber
	if err := h.db.Where("unsubscribe_token = ?", input.Token).First(&subscriber).Error; err != nil {
		return nil, huma.Error404NotFound("Unknown unsubscribe token")
	}
	if err := h.db.Model(&subscriber).Update("active", false).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to unsubscribe")
	}

	res := &SubscribeOutput{}
	res.Body.Message = "Unsubscribed"
	return res, nil
}

type CreateCampaignRequest struct {
	auth.AuthInput
	Body struct {
		Subject string `json:"subject" required:"true"`
		Body    string `json:"body" required:"true"`
	}
}

type CampaignResponse struct {
	ID      uint       `json:"id"`
	Subject string     `json:"subject"`
	Body    string     `json:"body"`
	SentAt  *time.Time `json:"sent_at,omitempty"`
}

type CampaignOutput struct {
	Body CampaignResponse
}

func (h *NewsletterHandler) HandleCreateCampaign(ctx context.Context, input *CreateCampaignRequest) (*CampaignOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	campaign := models.Campaign{
		Subject: input.Body.Subject,
		Body:    input.Body.Body,
	}
	if err := h.db.Create(&campaign).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create campaign")
	}

	return &CampaignOutput{Body: CampaignResponse{
		ID:      campaign.ID,
		Subject: campaign.Subject,
		Body:    campaign.Body,
	}}, nil
}

type SendCampaignRequest struct {
	auth.AuthInput
	ID uint `path:"id" doc:"Campaign ID"`
}

type SendCampaignOutput struct {
	Body struct {
		Queued int `json:"queued"`
	}
}

// HandleSendCampaign queues one message per active subscriber on the
// broker. Delivery rows are reused across attempts so a retry after a
// broker outage re-queues only the deliveries that never went out; the
// campaign is marked sent only once at least one message reached the
// broker.
func (h *NewsletterHandler) HandleSendCampaign(ctx context.Context, input *SendCampaignRequest) (*SendCampaignOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}
	if h.publisher == nil {
		return nil, huma.Error503ServiceUnavailable("Campaign queue is not configured")
	}

	var campaign models.Campaign
	if err := h.db.First(&campaign, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Campaign not found")
	}
	if campaign.SentAt != nil {
		return nil, huma.Error409Conflict("Campaign already sent")
	}

	var subscribers []models.Subscriber
	if err := h.db.Where("active = ?", true).Find(&subscribers).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list subscribers")
	}

	queued := 0
	for _, s := range subscribers {
		var delivery models.CampaignDelivery
		err := h.db.Where(models.CampaignDelivery{CampaignID: campaign.ID, SubscriberID: s.ID}).
			FirstOrCreate(&delivery).Error
		if err != nil {
			log.Printf("Failed to create delivery row for subscriber %d: %v", s.ID, err)
			continue
		}
		if delivery.Sent {
			continue
		}
		msg := queue.CampaignMessage{
			CampaignID:       campaign.ID,
			DeliveryID:       delivery.ID,
			SubscriberID:     s.ID,
			Email:            s.Email,
			Name:             s.Name,
			Subject:          campaign.Subject,
			Body:             campaign.Body,
			UnsubscribeToken: s.UnsubscribeToken,
			QueuedAt:         time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.publisher.PublishCampaignMessage(ctx, msg); err != nil {
			log.Printf("Failed to publish campaign message for subscriber %d: %v", s.ID, err)
			continue
		}
		queued++
	}

	if queued == 0 && len(subscribers) > 0 {
		// Nothing reached the broker; leave the campaign re-sendable.
		return nil, huma.Error502BadGateway("Failed to queue campaign messages")
	}

	if queued > 0 {
		now := time.Now()
		if err := h.db.Model(&campaign).Update("sent_at", now).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to mark campaign sent")
		}
	}

	res := &SendCampaignOutput{}
	res.Body.Queued = queued
	return res, nil
}

type ListCampaignsRequest struct {
	auth.AuthInput
}

type ListCampaignsOutput struct {
	Body struct {
		Campaigns []CampaignStats `json:"campaigns"`
	}
}

type CampaignStats struct {
	CampaignResponse
	Deliveries int64 `json:"deliveries"`
	Delivered  int64 `json:"delivered"`
}

func (h *NewsletterHandler) HandleListCampaigns(ctx context.Context, input *ListCampaignsRequest) (*ListCampaignsOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var campaigns []models.Campaign
	if err := h.db.Order("created_at desc").Find(&campaigns).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list campaigns")
	}

	type deliveryCount struct {
		CampaignID uint
		Deliveries int64
		Delivered  int64
	}
	var counts []deliveryCount
	err := h.db.Model(&models.CampaignDelivery{}).
		Select("campaign_id, COUNT(*) AS deliveries, SUM(CASE WHEN sent THEN 1 ELSE 0 END) AS delivered").
		Group("campaign_id").
		Scan(&counts).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to aggregate deliveries")
	}
	byCampaign := make(map[uint]deliveryCount, len(counts))
	for _, c := range counts {
		byCampaign[c.CampaignID] = c
	}

	res := &ListCampaignsOutput{}
	res.Body.Campaigns = make([]CampaignStats, 0, len(campaigns))
	for _, c := range campaigns {
		stats := CampaignStats{CampaignResponse: CampaignResponse{
			ID:      c.ID,
			Subject: c.Subject,
			Body:    c.Body,
			SentAt:  c.SentAt,
		}}
		stats.Deliveries = byCampaign[c.ID].Deliveries
		stats.Delivered = byCampaign[c.ID].Delivered
		res.Body.Campaigns = append(res.Body.Campaigns, stats)
	}
	return res, nil
}
