package reminder

import (
	"context"
	"time"
)

type LogRepository interface {
	// Claim inserts the log row and reports whether this call created it.
	// A false result means the reminder was already sent for that day.
	Claim(ctx context.Context, entry LogEntry) (bool, error)
	WasSent(ctx context.Context, employeeID string, date time.Time, kind Kind) (bool, error)
	CountByDate(ctx context.Context, date time.Time) (map[Kind]int, error)
}
