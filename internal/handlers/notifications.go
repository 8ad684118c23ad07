package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/morgana-orum/portal-api/internal/models"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

type ListNotificationsInput struct {
	Limit int `query:"limit" required:"false" minimum:"1" maximum:"100" doc:"Defaults to 50"`
}

type ListNotificationsOutput struct {
	Body struct {
		Notifications []models.Notification `json:"notifications"`
	}
}

func (h *NotificationHandler) HandleList(ctx context.Context, input *ListNotificationsInput) (*ListNotificationsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 50
	}

	var notifications []models.Notification
	err := h.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list notifications")
	}

	out := &ListNotificationsOutput{}
	out.Body.Notifications = notifications
	return out, nil
}
