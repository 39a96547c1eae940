// Package repository реализует хранилище IQ-Fit на PostgreSQL: пользователи,
// планы, подписки, платежи, каталог контента, журнал активности и сообщения.
// Все методы оборачивают ошибки с именем операции и сопоставляют ошибки
// драйвера с доменными ошибками models.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// DB минимальный набор методов пула соединений. Ему удовлетворяют
// *pgxpool.Pool и pgxmock.PgxPoolIface.
type DB interface {
	querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// querier общее подмножество пула и транзакции.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Storage инкапсулирует пул соединений с PostgreSQL.
type Storage struct {
	DB DB
}

// Connect создает пул соединений и проверяет доступность базы.
func Connect(ctx context.Context, storageConnectionString string) (*pgxpool.Pool, error) {
	const op = "storage.Connect"

	pool, err := pgxpool.New(ctx, storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pool, nil
}

// New создает хранилище поверх готового пула.
func New(db DB) *Storage {
	return &Storage{DB: db}
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.Ping"
	if err := s.DB.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает пул.
func (s *Storage) Close() {
	s.DB.Close()
}

var txOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// withTx выполняет fn в транзакции read committed. Любая ошибка fn или
// фиксации откатывает транзакцию.
func (s *Storage) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.DB.BeginTx(ctx, txOptions)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// mapErr переводит ошибки драйвера в доменные.
func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return models.ErrConflict
		case pgerrcode.ForeignKeyViolation:
			return models.ErrNotFound
		case pgerrcode.CheckViolation, pgerrcode.InvalidTextRepresentation:
			return fmt.Errorf("%w: %s", models.ErrBadRequest, pgErr.Message)
		}
	}
	return err
}
