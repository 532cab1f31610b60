package worktime

import "time"

// Reminder offsets relative to the computed checkout instant.
const (
	PreCheckoutLead = 5 * time.Minute
	OverdueDelay    = 10 * time.Minute
	FinalWindow     = 120 * time.Minute
)

// ComputeCheckoutMinutes returns the expected checkout as a minute of the day.
// A nil check-in falls back to the working duration counted from midnight.
func ComputeCheckoutMinutes(checkinMinutes *int, workingMinutes int) int {
	if checkinMinutes == nil {
		return WrapMinutes(workingMinutes)
	}
	return WrapMinutes(*checkinMinutes + workingMinutes)
}

// ComputeCheckoutTime returns the expected checkout instant. The result may
// fall on the next calendar day when the shift crosses midnight.
func ComputeCheckoutTime(checkin *time.Time, workingMinutes int, day time.Time) time.Time {
	duration := time.Duration(workingMinutes) * time.Minute
	if checkin == nil {
		midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		return midnight.Add(duration)
	}
	return checkin.Truncate(time.Minute).Add(duration)
}

// Stage is where "now" sits relative to an employee's reminder schedule.
type Stage int

const (
	StageBeforeWindow Stage = iota
	StagePreCheckout
	StageGrace
	StageOverdue
	StageExpired
)

func (s Stage) String() string {
	switch s {
	case StagePreCheckout:
		return "pre_checkout"
	case StageGrace:
		return "grace"
	case StageOverdue:
		return "overdue"
	case StageExpired:
		return "expired"
	default:
		return "before_window"
	}
}

// ReminderSchedule holds the staged reminder instants derived from a checkout.
type ReminderSchedule struct {
	Checkout    time.Time
	PreCheckout time.Time
	Overdue     time.Time
	FinalEnd    time.Time
}

func ComputeReminderSchedule(checkout time.Time) ReminderSchedule {
	return ReminderSchedule{
		Checkout:    checkout,
		PreCheckout: checkout.Add(-PreCheckoutLead),
		Overdue:     checkout.Add(OverdueDelay),
		FinalEnd:    checkout.Add(FinalWindow),
	}
}

// StageAt classifies now against the schedule.
//
//	[PreCheckout, Checkout)  pre-checkout reminder
//	[Checkout, Overdue)      grace, nothing is sent
//	[Overdue, FinalEnd)      final reminder
func (s ReminderSchedule) StageAt(now time.Time) Stage {
	untilCheckout := s.Checkout.Sub(now)
	sinceCheckout := now.Sub(s.Checkout)

	switch {
	case untilCheckout > 0 && untilCheckout <= PreCheckoutLead:
		return StagePreCheckout
	case untilCheckout > 0:
		return StageBeforeWindow
	case sinceCheckout < OverdueDelay:
		return StageGrace
	case sinceCheckout < FinalWindow:
		return StageOverdue
	default:
		return StageExpired
	}
}

// MinutesSinceCheckout is the signed number of whole minutes between the
// checkout instant and now.
func (s ReminderSchedule) MinutesSinceCheckout(now time.Time) int {
	return int(now.Sub(s.Checkout) / time.Minute)
}
