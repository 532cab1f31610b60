package settings

import (
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
)

type UpdateSettingsRequest struct {
	ReminderTime string   `json:"reminder_time"`
	WorkingHours string   `json:"working_hours"`
	WeeklyOff    []string `json:"weekly_off"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := worktime.ParseClockToMinutes(r.ReminderTime); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "reminder_time",
			Message: "reminder_time must be a time of day in H:MM or HH:MM format",
		})
	}

	if !validator.IsValidHourMinute(r.WorkingHours) {
		errs = append(errs, validator.ValidationError{
			Field:   "working_hours",
			Message: "working_hours must be a duration in HH:MM format",
		})
	} else if m := worktime.ParseDurationToMinutes(r.WorkingHours); m <= 0 || m >= worktime.MinutesPerDay {
		errs = append(errs, validator.ValidationError{
			Field:   "working_hours",
			Message: "working_hours must be between 00:01 and 23:59",
		})
	}

	for _, day := range r.WeeklyOff {
		if _, ok := ParseWeekday(day); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "weekly_off",
				Message: "unknown weekday: " + day,
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToWeeklyOff assumes Validate has passed.
func (r *UpdateSettingsRequest) ToWeeklyOff() WeeklyOff {
	var w WeeklyOff
	for _, day := range r.WeeklyOff {
		if d, ok := ParseWeekday(day); ok {
			w[d] = true
		}
	}
	return w
}

type SettingsResponse struct {
	ReminderTime      string   `json:"reminder_time"`
	WorkingHours      string   `json:"working_hours"`
	WorkingHoursHuman string   `json:"working_hours_human"`
	WeeklyOff         []string `json:"weekly_off"`
	IsDefault         bool     `json:"is_default"`
	UpdatedAt         *string  `json:"updated_at,omitempty"`
}
