package models

import (
	"errors"
	"fmt"
)

// Доменные ошибки. Слой хранилища и сервисы оборачивают их через %w,
// HTTP-слой сопоставляет их со статусами ответа.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrUnauthorized   = errors.New("invalid email or password")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrAmountMismatch = errors.New("amount does not match plan price")

	// ErrSuspended возвращается заблокированному пользователю и является ErrForbidden.
	ErrSuspended = fmt.Errorf("account suspended: %w", ErrForbidden)
)
