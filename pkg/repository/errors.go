package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the catalogue schema can raise.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
)

// ErrConstraint reports a row rejected by a foreign key, check, or not-null
// constraint. The wrapped message names the constraint.
var ErrConstraint = errors.New("constraint violation")

// MapError translates database errors to domain errors.
//
// sql.ErrNoRows maps to notFoundErr and a unique violation maps to
// duplicateErr. Foreign key, check, and not-null violations wrap
// ErrConstraint. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return duplicateErr
	case pgForeignKeyViolation, pgCheckViolation, pgNotNullViolation:
		if pgErr.ConstraintName != "" {
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.ConstraintName)
		}
		if pgErr.ColumnName != "" {
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.ColumnName)
		}
		return ErrConstraint
	default:
		return err
	}
}
