package usecase

import (
	"errors"
	"strings"

	"hospicloud/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotAllowed        = apperror.Unauthorized("You are not allowed to perform this action")
	ErrInvalidDateFormat = apperror.Validation("invalid date format, use YYYY-MM-DD")
)

// isDuplicateKeyError checks if the error is a unique constraint violation
// on a constraint containing the specified name. Drivers that translate
// errors lose the constraint name, so any translated duplicate matches.
func isDuplicateKeyError(err error, constraintName string) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isForeignKeyError checks if the error is a foreign key violation
func isForeignKeyError(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		return pgErr.Code == "23503"
	}
	return false
}
