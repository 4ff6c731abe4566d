package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"filesmanager/internal/domain"
)

// ErrDuplicate is returned when an insert or update violates a unique index.
var ErrDuplicate = fmt.Errorf("%w: duplicate key", domain.ErrConflict)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err comes from a unique index, across
// the postgres and sqlite drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}

// translate maps driver errors onto the domain error kinds.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	case IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w: %v", what, domain.ErrStore, err)
	}
}

const batchSize = 500

// batches splits ids so IN lists stay under driver parameter limits.
func batches(ids []string) [][]string {
	var out [][]string
	for len(ids) > batchSize {
		out = append(out, ids[:batchSize])
		ids = ids[batchSize:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
