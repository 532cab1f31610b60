package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeCheckinReminder   NotificationType = "checkin"
	TypeCheckoutBefore    NotificationType = "checkout_before"
	TypeCheckoutFinal     NotificationType = "checkout_final"
	TypeAutoAbsentWarning NotificationType = "auto_absent_warning"
	TypeOvertimeRecorded  NotificationType = "overtime_recorded"
)

// Categories let the panel show reminders apart from attendance records.
const (
	CategoryReminder = "reminder"
	CategoryRecord   = "record"
)

var typeCategories = map[NotificationType]string{
	TypeCheckinReminder:   CategoryReminder,
	TypeCheckoutBefore:    CategoryReminder,
	TypeCheckoutFinal:     CategoryReminder,
	TypeAutoAbsentWarning: CategoryRecord,
	TypeOvertimeRecorded:  CategoryRecord,
}

func (t NotificationType) IsValid() bool {
	_, ok := typeCategories[t]
	return ok
}

// Category is empty for unknown types.
func (t NotificationType) Category() string {
	return typeCategories[t]
}

// ListFilter narrows a recipient's notification listing. A nil Types lists
// every type; an empty non-nil Types matches nothing.
type ListFilter struct {
	Page       int
	PageSize   int
	UnreadOnly bool
	Types      []NotificationType
}

// ModuleAttendance is the only module producing notifications here.
const ModuleAttendance = "attendance"

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Module      string
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
