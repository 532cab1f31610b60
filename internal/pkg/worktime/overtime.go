package worktime

import (
	"time"

	"github.com/shopspring/decimal"
)

// OvertimeThresholdMinutes is the smallest overtime that counts. Anything
// below it is treated as clock noise.
const OvertimeThresholdMinutes = 15

type Overtime struct {
	Minutes int
	Hours   decimal.Decimal
}

func (o Overtime) IsZero() bool {
	return o.Minutes == 0
}

// ComputeOvertime compares the actual checkout with the required one. Missing
// inputs yield zero overtime.
func ComputeOvertime(checkin, actualCheckout, requiredCheckout *time.Time) Overtime {
	zero := Overtime{Hours: decimal.Zero}
	if checkin == nil || actualCheckout == nil || requiredCheckout == nil {
		return zero
	}

	worked := actualCheckout.Sub(*checkin)
	required := requiredCheckout.Sub(*checkin)
	minutes := int((worked - required) / time.Minute)

	if minutes < OvertimeThresholdMinutes {
		return zero
	}

	return Overtime{
		Minutes: minutes,
		Hours:   decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)).Round(2),
	}
}
