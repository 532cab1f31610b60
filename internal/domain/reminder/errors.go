package reminder

import "errors"

var (
	ErrJobInProgress = errors.New("reminder job is already running")
	ErrFutureDate    = errors.New("backfill date must not be today or later")
)
