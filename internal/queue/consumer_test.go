package queue

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/trekkingar/trekkingar-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeSender struct {
	sent []string
	fail bool
}

func (s *fakeSender) Send(to, subject, body string) error {
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, to)
	return nil
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Subscriber{}, &models.Campaign{}, &models.CampaignDelivery{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestHandleCampaignMessage(t *testing.T) {
	db := setupDB(t)
	delivery := models.CampaignDelivery{CampaignID: 1, SubscriberID: 1}
	db.Create(&delivery)

	msg := CampaignMessage{
		CampaignID:       1,
		DeliveryID:       delivery.ID,
		SubscriberID:     1,
		Email:            "a@example.com",
		Subject:          "Hello",
		Body:             "World",
		UnsubscribeToken: "tok",
	}
	body, _ := json.Marshal(msg)

	sender := &fakeSender{}
	if err := HandleCampaignMessage(db, sender, body); err != nil {
		t.Fatalf("HandleCampaignMessage returned error: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "a@example.com" {
		t.Errorf("expected one email to a@example.com, got %v", sender.sent)
	}

	var stored models.CampaignDelivery
	db.First(&stored, delivery.ID)
	if !stored.Sent || stored.SentAt == nil {
		t.Error("expected delivery flagged as sent")
	}

	// Redelivered message is skipped, not emailed twice.
	if err := HandleCampaignMessage(db, sender, body); err != nil {
		t.Fatalf("redelivery returned error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("expected 1 email after redelivery, got %d", len(sender.sent))
	}
}

func TestHandleCampaignMessageSendFailure(t *testing.T) {
	db := setupDB(t)
	delivery := models.CampaignDelivery{CampaignID: 1, SubscriberID: 2}
	db.Create(&delivery)

	msg := CampaignMessage{DeliveryID: delivery.ID, Email: "b@example.com", Subject: "s", Body: "b"}
	body, _ := json.Marshal(msg)

	sender := &fakeSender{fail: true}
	if err := HandleCampaignMessage(db, sender, body); err == nil {
		t.Fatal("expected error when sending fails")
	}

	var stored models.CampaignDelivery
	db.First(&stored, delivery.ID)
	if stored.Sent {
		t.Error("expected delivery not flagged as sent")
	}
	if stored.Error == "" {
		t.Error("expected send error recorded on delivery row")
	}
}

func TestHandleCampaignMessageBadPayload(t *testing.T) {
	db := setupDB(t)
	if err := HandleCampaignMessage(db, &fakeSender{}, []byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
