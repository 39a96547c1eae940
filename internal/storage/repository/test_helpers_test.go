package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/iq-fit/internal/migrations"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(dsn, migrationsPath))

	return New(pool)
}

// TestDataFactory содержит методы для создания тестовых данных.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя через регистрацию.
func (f *TestDataFactory) CreateUser(t *testing.T, fullName, email string) *models.User {
	t.Helper()
	u, err := f.storage.RegisterUser(context.Background(), models.User{
		FullName: fullName, Email: email, PasswordHash: "hashedpassword",
	})
	require.NoError(t, err)
	return u
}

// CreatePlan создает тестовый план.
func (f *TestDataFactory) CreatePlan(t *testing.T, name string, price float64, days int) *models.Plan {
	t.Helper()
	p, err := f.storage.CreatePlan(context.Background(), models.Plan{
		PlanName: name, Price: price, DurationDays: days,
	})
	require.NoError(t, err)
	return p
}

// CreateContent создает тестовый элемент каталога.
func (f *TestDataFactory) CreateContent(t *testing.T, title string, ct models.ContentType, level models.AccessLevel) *models.Content {
	t.Helper()
	c, err := f.storage.CreateContent(context.Background(), models.Content{
		Title: title, ContentType: ct, AccessLevel: level, Category: "general", DifficultyLevel: "easy",
	})
	require.NoError(t, err)
	return c
}

// count возвращает количество строк в таблице.
func (f *TestDataFactory) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.storage.DB.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
