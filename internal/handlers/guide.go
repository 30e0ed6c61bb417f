package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/trekkingar/trekkingar-api/internal/auth"
	"github.com/trekkingar/trekkingar-api/internal/models"
	"gorm.io/gorm"
)

type GuideHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewGuideHandler(db *gorm.DB, authHandler *auth.AuthHandler) *GuideHandler {
	return &GuideHandler{db: db, authHandler: authHandler}
}

type GuideResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Bio    string `json:"bio"`
	Active bool   `json:"active"`
}

func guideResponse(g models.Guide) GuideResponse {
	return GuideResponse{
		ID:     g.ID,
		Name:   g.Name,
		Email:  g.Email,
		Phone:  g.Phone,
		Bio:    g.Bio,
		Active: g.Active,
	}
}

type ListGuidesRequest struct {
	auth.AuthInput
}

type ListGuidesOutput struct {
	Body struct {
		Guides []GuideResponse `json:"guides"`
	}
}

func (h *GuideHandler) HandleListGuides(ctx context.Context, input *ListGuidesRequest) (*ListGuidesOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var guides []models.Guide
	if err := h.db.Order("name asc").Find(&guides).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list guides")
	}

	res := &ListGuidesOutput{}
	res.Body.Guides = make([]GuideResponse, 0, len(guides))
	for _, g := range guides {
		res.Body.Guides = append(res.Body.Guides, guideResponse(g))
	}
	return res, nil
}

type GuideFields struct {
	Name   string `json:"name" required:"true"`
	Email  string `json:"email" format:"email" required:"true"`
	Phone  string `json:"phone"`
	Bio    string `json:"bio"`
	Active bool   `json:"active"`
}

type CreateGuideRequest struct {
	auth.AuthInput
	Body GuideFields
}

type GuideOutput struct {
	Body GuideResponse
}

func (h *GuideHandler) HandleCreateGuide(ctx context.Context, input *CreateGuideRequest) (*GuideOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	guide := models.Guide{
		Name:   input.Body.Name,
		Email:  input.Body.Email,
		Phone:  input.Body.Phone,
		Bio:    input.Body.Bio,
		Active: input.Body.Active,
	}
	if err := h.db.Create(&guide).Error; err != nil {
		return nil, huma.Error409Conflict("Failed to create guide (duplicate email?)")
	}
	return &GuideOutput{Body: guideResponse(guide)}, nil
}

type UpdateGuideRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body GuideFields
}

func (h *GuideHandler) HandleUpdateGuide(ctx context.Context, input *UpdateGuideRequest) (*GuideOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var guide models.Guide
	if err := h.db.First(&guide, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Guide not found")
	}

	guide.Name = input.Body.Name
	guide.Email = input.Body.Email
	guide.Phone = input.Body.Phone
	guide.Bio = input.Body.Bio
	guide.Active = input.Body.Active

	if err := h.db.Save(&guide).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update guide")
	}
	return &GuideOutput{Body: guideResponse(guide)}, nil
}

type DeleteGuideRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *GuideHandler) HandleDeleteGuide(ctx context.Context, input *DeleteGuideRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var guide models.Guide
	if err := h.db.First(&guide, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Guide not found")
	}

	// Trips keep running without a guide; unassign before removal.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Trip{}).Where("guide_id = ?", guide.ID).Update("guide_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&guide).Error
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete guide")
	}
	return nil, nil
}
