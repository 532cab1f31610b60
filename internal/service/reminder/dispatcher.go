package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/email"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/sms"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/validator"
)

// DispatcherConfig carries the channel capabilities decided at startup.
type DispatcherConfig struct {
	SMSEnabled  bool
	CountryCode string
	MinDigits   int
}

type dispatcher struct {
	notifications notification.Service
	sms           sms.Sender
	email         email.EmailService
	cfg           DispatcherConfig
}

func NewDispatcher(notifications notification.Service, smsSender sms.Sender, emailService email.EmailService, cfg DispatcherConfig) reminder.Dispatcher {
	if cfg.CountryCode == "" {
		cfg.CountryCode = "62"
	}
	if cfg.MinDigits <= 0 {
		cfg.MinDigits = 10
	}
	return &dispatcher{
		notifications: notifications,
		sms:           smsSender,
		email:         emailService,
		cfg:           cfg,
	}
}

// Dispatch implements reminder.Dispatcher. Channels are attempted in order
// and independently.
func (d *dispatcher) Dispatch(ctx context.Context, emp employee.Employee, msg reminder.Message) reminder.DispatchResult {
	var result reminder.DispatchResult
	logger := slog.With("employee_id", emp.ID, "kind", msg.Kind)

	if emp.HasUserAccount() && d.notifications != nil {
		err := d.notifications.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: *emp.UserID,
			Type:        msg.Kind.NotificationType(),
			Module:      notification.ModuleAttendance,
			Title:       msg.Title,
			Message:     msg.Body,
			Data:        msg.Data(),
		})
		if err != nil {
			logger.Warn("Panel notification failed", "error", err)
			result.Fail(reminder.ChannelPanel, err)
		} else {
			result.PanelNotification = true
		}
	}

	if d.cfg.SMSEnabled && d.sms != nil && emp.PhoneNumber != "" {
		if err := d.sendSMS(ctx, emp, msg); err != nil {
			if !errors.Is(err, sms.ErrNotConfigured) {
				logger.Warn("SMS reminder failed", "error", err)
				result.Fail(reminder.ChannelSMS, err)
			}
		} else {
			result.SMSSent = true
		}
	}

	if to := emp.EmailAddress(); to != "" && d.email != nil {
		if !validator.IsValidEmail(to) {
			logger.Warn("Email reminder skipped", "error", "invalid address")
			result.Fail(reminder.ChannelEmail, fmt.Errorf("invalid email address %q", to))
		} else if err := d.email.SendReminder(ctx, to, toEmail(emp, msg)); err != nil {
			if !errors.Is(err, email.ErrNotConfigured) {
				logger.Warn("Email reminder failed", "error", err)
				result.Fail(reminder.ChannelEmail, err)
			}
		} else {
			result.EmailSent = true
		}
	}

	logger.Info("Reminder dispatched",
		"panel", result.PanelNotification,
		"sms", result.SMSSent,
		"email", result.EmailSent,
	)
	return result
}

func (d *dispatcher) sendSMS(ctx context.Context, emp employee.Employee, msg reminder.Message) error {
	to, ok := validator.NormalizePhoneNumber(emp.PhoneNumber, d.cfg.CountryCode, d.cfg.MinDigits)
	if !ok {
		return fmt.Errorf("invalid phone number %q", emp.PhoneNumber)
	}

	res, err := d.sms.Send(ctx, to, smsBody(msg))
	if err != nil {
		return err
	}
	if res != nil {
		slog.Debug("SMS accepted", "employee_id", emp.ID, "sid", res.SID, "status", res.Status)
	}
	return nil
}

func smsBody(msg reminder.Message) string {
	var b strings.Builder
	b.WriteString(msg.Title)
	b.WriteString(": ")
	b.WriteString(msg.Body)
	return b.String()
}

func toEmail(emp employee.Employee, msg reminder.Message) email.Reminder {
	details := make([]email.Detail, 0, len(msg.Details))
	for _, d := range msg.Details {
		details = append(details, email.Detail{Label: d.Label, Value: d.Value})
	}
	return email.Reminder{
		RecipientName: emp.FullName,
		Subject:       msg.Kind.Subject(),
		Title:         msg.Title,
		Body:          msg.Body,
		Date:          msg.Date.Format("Monday, 2 January 2006"),
		Details:       details,
	}
}
