package reminder

import (
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/notification"
)

// Kind identifies a reminder and doubles as its notification type.
type Kind string

const (
	KindCheckin           Kind = "checkin"
	KindCheckoutBefore    Kind = "checkout_before"
	KindCheckoutFinal     Kind = "checkout_final"
	KindAutoAbsentWarning Kind = "auto_absent_warning"
	KindOvertimeRecorded  Kind = "overtime_recorded"
)

func (k Kind) NotificationType() notification.NotificationType {
	return notification.NotificationType(k)
}

// Subject is the channel-independent title for the kind.
func (k Kind) Subject() string {
	switch k {
	case KindCheckin:
		return "Check-in Reminder"
	case KindCheckoutBefore:
		return "Checkout Reminder"
	case KindCheckoutFinal:
		return "Final Checkout Reminder"
	case KindAutoAbsentWarning:
		return "Marked Absent"
	case KindOvertimeRecorded:
		return "Overtime Recorded"
	default:
		return "Attendance Notice"
	}
}

// Message is a rendered reminder ready for every channel.
type Message struct {
	Kind  Kind
	Title string
	Body  string
	Date  time.Time
	// Details are shown as label/value rows in email and stored with the
	// panel notification.
	Details []Detail
}

type Detail struct {
	Label string
	Value string
}

func (m Message) Data() map[string]interface{} {
	data := map[string]interface{}{
		"kind": string(m.Kind),
		"date": m.Date.Format("2006-01-02"),
	}
	for _, d := range m.Details {
		data[d.Label] = d.Value
	}
	return data
}

// LogEntry records a dispatched reminder. At most one exists per
// (employee, date, kind).
type LogEntry struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Kind       Kind
	Title      string
	SentAt     time.Time
}

// Channel result keys used in DispatchResult.Errors.
const (
	ChannelPanel = "panel"
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// DispatchResult reports each channel independently. It is informational
// only; callers never branch on it.
type DispatchResult struct {
	PanelNotification bool              `json:"panel_notification"`
	SMSSent           bool              `json:"sms_sent"`
	EmailSent         bool              `json:"email_sent"`
	Errors            map[string]string `json:"errors,omitempty"`
}

func (r *DispatchResult) Fail(channel string, err error) {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	r.Errors[channel] = err.Error()
}

func (r DispatchResult) AnySent() bool {
	return r.PanelNotification || r.SMSSent || r.EmailSent
}
