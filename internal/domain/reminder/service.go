package reminder

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/employee"
)

// Dispatcher fans a message out to the panel, SMS and email channels. It
// never returns an error; per-channel failures are in the result.
type Dispatcher interface {
	Dispatch(ctx context.Context, emp employee.Employee, msg Message) DispatchResult
}

type Service interface {
	// RunCheckinPass reminds employees without a check-in. Unless force is
	// set it only acts inside the configured reminder window.
	RunCheckinPass(ctx context.Context, force bool) (PassResult, error)
	RunCheckoutPass(ctx context.Context) (PassResult, error)
	RunOvertimeFinalizer(ctx context.Context) (PassResult, error)
	RunAbsenceFinalizer(ctx context.Context) (PassResult, error)
	RunAbsenceBackfill(ctx context.Context, date time.Time) (PassResult, error)
	Status(ctx context.Context) StatusResponse
}
