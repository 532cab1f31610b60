package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/database"
	"github.com/google/uuid"
)

type reminderLogRepository struct {
	db *database.DB
}

func NewReminderLogRepository(db *database.DB) reminder.LogRepository {
	return &reminderLogRepository{db: db}
}

// Claim implements reminder.LogRepository.
func (r *reminderLogRepository) Claim(ctx context.Context, entry reminder.LogEntry) (bool, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now()
	}

	query := `
		INSERT INTO reminder_logs (id, employee_id, date, kind, title, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (employee_id, date, kind) DO NOTHING
	`

	tag, err := q.Exec(ctx, query,
		entry.ID, entry.EmployeeID, entry.Date, string(entry.Kind), entry.Title, entry.SentAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder log: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// WasSent implements reminder.LogRepository.
func (r *reminderLogRepository) WasSent(ctx context.Context, employeeID string, date time.Time, kind reminder.Kind) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM reminder_logs
			WHERE employee_id = $1 AND date = $2 AND kind = $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, date, string(kind)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reminder log: %w", err)
	}

	return exists, nil
}

// CountByDate implements reminder.LogRepository.
func (r *reminderLogRepository) CountByDate(ctx context.Context, date time.Time) (map[reminder.Kind]int, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT kind, COUNT(*) FROM reminder_logs WHERE date = $1 GROUP BY kind`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to count reminder logs: %w", err)
	}
	defer rows.Close()

	counts := make(map[reminder.Kind]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan reminder log count: %w", err)
		}
		counts[reminder.Kind(kind)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminder log counts: %w", err)
	}

	return counts, nil
}
