package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Ошибки хранилища, не зависящие от драйвера.
var (
	// ErrNotFound — правило или action не найдены.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — нарушение уникальности (повторный action id).
	ErrAlreadyExists = errors.New("already exists")
)

// pgUniqueViolation — SQLSTATE unique_violation.
const pgUniqueViolation = "23505"

// wrapErr переводит ошибки pgx в ошибки пакета и добавляет контекст op.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w: %s", op, ErrAlreadyExists, pgErr.ConstraintName)
	}

	return fmt.Errorf("%s: %w", op, err)
}
