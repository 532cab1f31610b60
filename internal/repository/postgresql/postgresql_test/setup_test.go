package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-reminder/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup wraps a migrated database dedicated to tests.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the migrations.
// The test is skipped when the variable is not set.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn, "Asia/Jakarta")
	require.NoError(t, err, "failed to connect to test database")

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, postgresql.Migrate(context.Background(), db))
	require.NoError(t, setup.TruncateAllTables(context.Background()))

	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables clears every table the engine writes to.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"reminder_logs",
		"notifications",
		"attendance_events",
		"attendances",
		"attendance_settings",
		"holidays",
		"employees",
		"users",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// InsertEmployee creates an active employee with a linked user account and
// returns the employee id.
func (t *TestDatabaseSetup) InsertEmployee(tb testing.TB, code, name string) string {
	tb.Helper()
	ctx := context.Background()

	var userID string
	err := t.DB.QueryRow(ctx,
		`INSERT INTO users (email) VALUES ($1) RETURNING id`, code+"@example.com",
	).Scan(&userID)
	require.NoError(tb, err)

	var employeeID string
	err = t.DB.QueryRow(ctx, `
		INSERT INTO employees (user_id, employee_code, full_name, phone_number, email)
		VALUES ($1, $2, $3, '081234567890', $4)
		RETURNING id`,
		userID, code, name, code+"@example.com",
	).Scan(&employeeID)
	require.NoError(tb, err)

	return employeeID
}

// Close closes the pool.
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
