package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/user"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, "Token revoked")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrEmployeeProfileRequired):
		Forbidden(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "ALREADY_CHECKED_IN", err.Error())
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "ALREADY_CHECKED_OUT", err.Error())
	case errors.Is(err, attendance.ErrMarkedAbsent):
		Conflict(w, "MARKED_ABSENT", err.Error())
	case errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrInvalidDate):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Reminder engine errors
	case errors.Is(err, reminder.ErrJobInProgress):
		Conflict(w, "JOB_IN_PROGRESS", err.Error())
	case errors.Is(err, reminder.ErrFutureDate):
		BadRequest(w, err.Error(), nil)

	// Settings and notifications
	case errors.Is(err, settings.ErrSettingsNotFound):
		NotFound(w, "Attendance settings not found")
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
