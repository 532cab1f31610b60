package reminder

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
)

func checkinMessage(name string, date time.Time, reminderTime string) reminder.Message {
	return reminder.Message{
		Kind:  reminder.KindCheckin,
		Title: reminder.KindCheckin.Subject(),
		Body:  fmt.Sprintf("Good morning %s, you have not checked in yet today. Please check in now.", name),
		Date:  date,
		Details: []reminder.Detail{
			{Label: "Reminder time", Value: reminderTime},
		},
	}
}

func checkoutBeforeMessage(date time.Time, schedule worktime.ReminderSchedule, checkin time.Time) reminder.Message {
	return reminder.Message{
		Kind:  reminder.KindCheckoutBefore,
		Title: reminder.KindCheckoutBefore.Subject(),
		Body: fmt.Sprintf("Your working hours end at %s. Remember to check out before you leave.",
			schedule.Checkout.Format(clockLayout)),
		Date: date,
		Details: []reminder.Detail{
			{Label: "Check-in", Value: checkin.Format(clockLayout)},
			{Label: "Expected checkout", Value: schedule.Checkout.Format(clockLayout)},
		},
	}
}

func checkoutFinalMessage(date time.Time, schedule worktime.ReminderSchedule, checkin, now time.Time) reminder.Message {
	late := worktime.FormatMinutesHuman(schedule.MinutesSinceCheckout(now))
	return reminder.Message{
		Kind:  reminder.KindCheckoutFinal,
		Title: reminder.KindCheckoutFinal.Subject(),
		Body: fmt.Sprintf("You have not checked out yet. Your expected checkout was %s (%s ago). "+
			"Records still open at the end of the day are marked absent.",
			schedule.Checkout.Format(clockLayout), late),
		Date: date,
		Details: []reminder.Detail{
			{Label: "Check-in", Value: checkin.Format(clockLayout)},
			{Label: "Expected checkout", Value: schedule.Checkout.Format(clockLayout)},
			{Label: "Overdue by", Value: late},
		},
	}
}

func autoAbsentMessage(date time.Time, checkin *time.Time) reminder.Message {
	details := []reminder.Detail{}
	if checkin != nil {
		details = append(details, reminder.Detail{Label: "Check-in", Value: checkin.Format(clockLayout)})
	}
	return reminder.Message{
		Kind:  reminder.KindAutoAbsentWarning,
		Title: reminder.KindAutoAbsentWarning.Subject(),
		Body: fmt.Sprintf("No checkout was recorded for %s, so your attendance for that day has been marked absent. "+
			"Contact your manager if this is wrong.", date.Format(dateLayout)),
		Date:    date,
		Details: details,
	}
}

func overtimeMessage(date time.Time, ot worktime.Overtime, required time.Time) reminder.Message {
	return reminder.Message{
		Kind:  reminder.KindOvertimeRecorded,
		Title: reminder.KindOvertimeRecorded.Subject(),
		Body: fmt.Sprintf("Overtime of %s (%s hours) was recorded for %s.",
			worktime.FormatMinutesHuman(ot.Minutes), ot.Hours.StringFixed(2), date.Format(dateLayout)),
		Date: date,
		Details: []reminder.Detail{
			{Label: "Required checkout", Value: required.Format(clockLayout)},
			{Label: "Overtime minutes", Value: fmt.Sprintf("%d", ot.Minutes)},
			{Label: "Overtime hours", Value: ot.Hours.StringFixed(2)},
		},
	}
}

func autoAbsentRemark(at time.Time) string {
	return fmt.Sprintf("Auto-marked absent at %s: no checkout recorded by end of day", at.Format(clockLayout))
}

func overtimeRemark(ot worktime.Overtime) string {
	return fmt.Sprintf("Overtime recorded: %s (%s hours)", worktime.FormatMinutesHuman(ot.Minutes), ot.Hours.StringFixed(2))
}

func backfillRemark() string {
	return "Auto-marked absent: no check-in recorded"
}
