package dto

import (
	"time"

	"github.com/noah-isme/pathway-api/internal/models"
)

// NotificationCreateRequest publishes a notification to one user.
type NotificationCreateRequest struct {
	UserID     string            `json:"user_id" validate:"required,max=36"`
	SourceType string            `json:"source_type" validate:"omitempty,oneof=LESSON LEARNING_PATH USER SYSTEM"`
	SourceID   string            `json:"source_id" validate:"omitempty,max=36"`
	Type       string            `json:"type" validate:"omitempty,max=32"`
	Message    string            `json:"message" validate:"required,min=1,max=4000"`
	Metadata   map[string]string `json:"metadata" validate:"omitempty,max=16"`
}

// NotificationResponse is the wire representation of a notification.
type NotificationResponse struct {
	NotificationID string            `json:"notification_id"`
	UserID         string            `json:"user_id"`
	SourceType     string            `json:"source_type,omitempty"`
	SourceID       string            `json:"source_id,omitempty"`
	Type           string            `json:"type"`
	Message        string            `json:"message"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	IsRead         bool              `json:"is_read"`
	SentAt         time.Time         `json:"sent_at"`
	ReadAt         *time.Time        `json:"read_at,omitempty"`
}

// NewNotificationResponse converts a model into a DTO.
func NewNotificationResponse(notification models.Notification) NotificationResponse {
	metadata := make(map[string]string, len(notification.Metadata))
	for key, value := range notification.Metadata {
		if text, ok := value.(string); ok {
			metadata[key] = text
		}
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	return NotificationResponse{
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		SourceType:     notification.SourceType,
		SourceID:       notification.SourceID,
		Type:           notification.Type,
		Message:        notification.Message,
		Metadata:       metadata,
		IsRead:         notification.Read,
		SentAt:         notification.SentAt,
		ReadAt:         notification.ReadAt,
	}
}

// NewNotificationResponseSlice converts a slice of models into DTOs.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		out = append(out, NewNotificationResponse(notification))
	}
	return out
}

// NotificationUnreadCountResponse wraps the derived unread counter.
type NotificationUnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}
