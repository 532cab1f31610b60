package notification

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/validator"
)

// ============= Request DTOs =============

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	RecipientID string
	Type        NotificationType
	Module      string
	Title       string
	Message     string
	Data        map[string]interface{}
}

// MarkAsReadRequest represents a request to mark notifications as read
type MarkAsReadRequest struct {
	NotificationIDs []string `json:"notification_ids" validate:"required,min=1,max=100,dive,uuid"`
}

func (r *MarkAsReadRequest) Validate() error {
	return validator.Struct(r)
}

// ListNotificationsRequest is the panel's listing query.
type ListNotificationsRequest struct {
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	UnreadOnly bool     `json:"unread_only"`
	Category   string   `json:"category" validate:"omitempty,oneof=reminder record"`
	Types      []string `json:"type" validate:"omitempty,max=5,dive,oneof=checkin checkout_before checkout_final auto_absent_warning overtime_recorded"`
}

func (r *ListNotificationsRequest) Validate() error {
	return validator.Struct(r)
}

// Filter assumes Validate has passed. Page bounds are clamped to 1 and
// 1..100 (default 20). Types and Category intersect when both are set.
func (r *ListNotificationsRequest) Filter() ListFilter {
	f := ListFilter{Page: r.Page, PageSize: r.PageSize, UnreadOnly: r.UnreadOnly}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}

	switch {
	case len(r.Types) > 0:
		f.Types = make([]NotificationType, 0, len(r.Types))
		for _, raw := range r.Types {
			t := NotificationType(raw)
			if r.Category == "" || t.Category() == r.Category {
				f.Types = append(f.Types, t)
			}
		}
	case r.Category != "":
		f.Types = []NotificationType{}
		for t, category := range typeCategories {
			if category == r.Category {
				f.Types = append(f.Types, t)
			}
		}
		sort.Slice(f.Types, func(i, j int) bool { return f.Types[i] < f.Types[j] })
	}
	return f
}

// ============= Response DTOs =============

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Module    string                 `json:"module"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int                    `json:"unread_count"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
	Types         []NotificationType     `json:"types,omitempty"`
}

// ============= SSE Event =============

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}
