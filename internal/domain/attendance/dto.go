package attendance

import (
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type ClockInRequest struct {
	EmployeeID string   `json:"-"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Address    *string  `json:"address,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	return validateLocation(r.EmployeeID, r.Latitude, r.Longitude)
}

type ClockOutRequest struct {
	EmployeeID string   `json:"-"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Address    *string  `json:"address,omitempty"`
}

func (r *ClockOutRequest) Validate() error {
	return validateLocation(r.EmployeeID, r.Latitude, r.Longitude)
}

func validateLocation(employeeID string, lat, lng *float64) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(employeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if (lat == nil) != (lng == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "latitude and longitude must be sent together",
		})
	}

	if lat != nil && lng != nil && !validator.IsValidCoordinate(*lat, *lng) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "latitude must be within [-90, 90] and longitude within [-180, 180]",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttendanceResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    *string `json:"employee_name,omitempty"`
	Date            string  `json:"date"`
	ClockInTime     *string `json:"clock_in_time,omitempty"`
	ClockOutTime    *string `json:"clock_out_time,omitempty"`
	Status          string  `json:"status"`
	OvertimeMinutes *int    `json:"overtime_minutes,omitempty"`
	OvertimeHours   *string `json:"overtime_hours,omitempty"`
	Remarks         *string `json:"remarks,omitempty"`
}

type EventResponse struct {
	Kind      string                 `json:"kind"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

// TodayResponse is today's record together with the reminder windows that
// apply to it.
type TodayResponse struct {
	Date             string              `json:"date"`
	Attendance       *AttendanceResponse `json:"attendance,omitempty"`
	ExpectedCheckout *string             `json:"expected_checkout,omitempty"`
	PreCheckoutAt    *string             `json:"pre_checkout_at,omitempty"`
	OverdueAt        *string             `json:"overdue_at,omitempty"`
	FinalWindowEnd   *string             `json:"final_window_end,omitempty"`
	Events           []EventResponse     `json:"events"`
}
