package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes surfaced to the service layer.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsForeignKeyViolation reports whether err is a referential-integrity failure,
// e.g. deleting a category that still has products.
func IsForeignKeyViolation(err error) bool { return pgCode(err) == pgForeignKeyViolation }

// IsUniqueViolation reports whether err is a duplicate-key failure.
func IsUniqueViolation(err error) bool { return pgCode(err) == pgUniqueViolation }

// IsCheckViolation reports whether err tripped a CHECK constraint (e.g. stock_count >= 0).
func IsCheckViolation(err error) bool { return pgCode(err) == pgCheckViolation }
