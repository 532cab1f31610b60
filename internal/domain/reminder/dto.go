package reminder

import "time"

// Pass names, also used as job and lock names.
const (
	PassCheckin           = "checkin_reminders"
	PassCheckout          = "checkout_reminders"
	PassOvertimeFinalizer = "overtime_finalizer"
	PassAbsenceFinalizer  = "absence_finalizer"
	PassAbsenceBackfill   = "absence_backfill"
)

// Outcome actions.
const (
	ActionSent          = "sent"
	ActionAlreadySent   = "already_sent"
	ActionCheckedIn     = "checked_in"
	ActionCheckedOut    = "checked_out"
	ActionNotDue        = "not_due"
	ActionMarkedAbsent  = "marked_absent"
	ActionAlreadyClosed = "already_closed"
	ActionOvertime      = "overtime_recorded"
	ActionNoOvertime    = "no_overtime"
	ActionUnchanged     = "unchanged"
	ActionBackfilled    = "backfilled"
	ActionFailed        = "failed"
)

// EmployeeOutcome describes what one pass did for one employee.
type EmployeeOutcome struct {
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Action       string          `json:"action"`
	Stage        string          `json:"stage,omitempty"`
	Kind         Kind            `json:"kind,omitempty"`
	Dispatch     *DispatchResult `json:"dispatch,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// PassResult is the operator-facing summary of a pass.
type PassResult struct {
	Pass       string            `json:"pass"`
	Date       string            `json:"date"`
	RanAt      time.Time         `json:"ran_at"`
	Skipped    bool              `json:"skipped"`
	SkipReason string            `json:"skip_reason,omitempty"`
	Considered int               `json:"considered"`
	Dispatched int               `json:"dispatched"`
	Updated    int               `json:"updated"`
	Failed     int               `json:"failed"`
	Outcomes   []EmployeeOutcome `json:"outcomes"`
}

func (r *PassResult) Add(o EmployeeOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Action {
	case ActionSent:
		r.Dispatched++
	case ActionMarkedAbsent, ActionOvertime, ActionBackfilled:
		r.Updated++
	case ActionFailed:
		r.Failed++
	}
}

func (r *PassResult) Skip(reason string) {
	r.Skipped = true
	r.SkipReason = reason
}

// CheckoutOffsets are the fixed reminder offsets around checkout, in minutes.
type CheckoutOffsets struct {
	PreCheckoutLead int `json:"pre_checkout_lead"`
	OverdueDelay    int `json:"overdue_delay"`
	FinalWindow     int `json:"final_window"`
}

type CheckinWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// StatusResponse is the scheduler configuration as seen right now.
type StatusResponse struct {
	Now               time.Time         `json:"now"`
	Date              string            `json:"date"`
	Timezone          string            `json:"timezone"`
	IsWorkingDay      bool              `json:"is_working_day"`
	ReminderTime      string            `json:"reminder_time"`
	WorkingHours      string            `json:"working_hours"`
	WorkingHoursHuman string            `json:"working_hours_human"`
	WorkingMinutes    int               `json:"working_minutes"`
	WeeklyOff         []string          `json:"weekly_off"`
	CheckinWindow     CheckinWindow     `json:"checkin_window"`
	CheckoutOffsets   CheckoutOffsets   `json:"checkout_offsets"`
	CheckinInterval   string            `json:"checkin_interval"`
	CheckoutInterval  string            `json:"checkout_interval"`
	DailyJobs         map[string]string `json:"daily_jobs"`
	SentToday         map[Kind]int      `json:"sent_today"`
}
