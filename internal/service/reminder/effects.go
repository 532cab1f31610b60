package reminder

import (
	"context"
	"log/slog"
)

// Effect is work that must only happen after the transaction that produced
// it has committed. Effects never fail the pass.
type Effect struct {
	Name       string
	EmployeeID string
	Run        func(ctx context.Context) error
}

func runEffects(ctx context.Context, effects []Effect) {
	for _, e := range effects {
		if err := e.Run(ctx); err != nil {
			slog.Warn("Post-commit effect failed", "effect", e.Name, "employee_id", e.EmployeeID, "error", err)
		}
	}
}
