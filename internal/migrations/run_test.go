package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func getTestDB(t *testing.T) (*sql.DB, string, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return db, dsn, cleanup
}

func getMigrationsPath(t *testing.T) string {
	projectRoot, err := filepath.Abs("../..")
	require.NoError(t, err)

	migrationsPath := filepath.Join(projectRoot, "migrations")
	t.Logf("Migrations path: %s", migrationsPath)
	return migrationsPath
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestRunMigrations(t *testing.T) {
	db, dsn, cleanup := getTestDB(t)
	defer cleanup()

	err := Run(dsn, getMigrationsPath(t))
	require.NoError(t, err)

	for _, table := range []string{
		"users", "plans", "subscriptions", "payments",
		"premium_changes", "content", "activity_logs", "messages",
		"subscription_reminders",
	} {
		require.True(t, tableExists(t, db, table), "table %q should exist", table)
	}

	var exists bool
	err = db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE schemaname = 'public'
			AND tablename = 'subscriptions'
			AND indexname = 'idx_subscriptions_user_id'
		)
	`).Scan(&exists)
	require.NoError(t, err)
	require.True(t, exists, "Index should exist")

	var usersCount int
	err = db.QueryRow("SELECT COUNT(*) FROM users").Scan(&usersCount)
	require.NoError(t, err)
	require.Zero(t, usersCount, "No seed data is loaded")
}

func TestMigrationConstraints(t *testing.T) {
	db, dsn, cleanup := getTestDB(t)
	defer cleanup()

	require.NoError(t, Run(dsn, getMigrationsPath(t)))

	_, err := db.Exec(`INSERT INTO users (full_name, email, password_hash) VALUES ('a', 'a@x.io', 'h')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (full_name, email, password_hash) VALUES ('b', 'a@x.io', 'h')`)
	require.Error(t, err, "email must be unique")

	_, err = db.Exec(`INSERT INTO users (full_name, email, password_hash, role) VALUES ('c', 'c@x.io', 'h', 'ROOT')`)
	require.Error(t, err, "role must be one of the known values")

	_, err = db.Exec(`INSERT INTO plans (plan_name, price, duration_days) VALUES ('bad', 1, 0)`)
	require.Error(t, err, "duration must be positive")
}

func TestMigrationIdempotency(t *testing.T) {
	db, dsn, cleanup := getTestDB(t)
	defer cleanup()

	migrationsPath := getMigrationsPath(t)

	err := Run(dsn, migrationsPath)
	require.NoError(t, err)

	err = Run(dsn, migrationsPath)
	require.NoError(t, err, "Running migrations twice should not fail")

	require.True(t, tableExists(t, db, "users"))
}

func TestRunReleasesConnections(t *testing.T) {
	db, dsn, cleanup := getTestDB(t)
	defer cleanup()
	db.SetMaxOpenConns(1)

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, Run(dsn, getMigrationsPath(t)))
	require.Zero(t, pool.Stat().AcquiredConns())

	// Соединение миграций закрыто: в базе остается только соединение теста.
	require.Eventually(t, func() bool {
		var others int
		err := db.QueryRow(`
			SELECT COUNT(*) FROM pg_stat_activity
			WHERE datname = current_database() AND pid <> pg_backend_pid()
		`).Scan(&others)
		return err == nil && others == 0
	}, 5*time.Second, 100*time.Millisecond)
}
