// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by store operations. Handlers map these to
// HTTP status codes; callers test them with errors.Is.
var (
	// ErrNotFound is returned when an operation is keyed on an
	// identifier that does not resolve to a row.
	ErrNotFound = errors.New("not found")

	// ErrPermission is returned when the caller is neither the owner of
	// the record nor an admin. The operation has no side effects.
	ErrPermission = errors.New("permission denied")
)

// ValidationError reports malformed or constraint-violating input. It is
// always recoverable by the caller correcting the input. Unique-constraint
// violations raised by Postgres at commit time are re-mapped to this type
// so a pre-check race never surfaces as an internal error.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// validationErr builds a *ValidationError for a field.
func validationErr(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505), optionally restricted to constraints whose
// name contains the given substring.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || strings.Contains(pgErr.ConstraintName, constraint)
}

// isForeignKeyViolation reports whether err is a Postgres foreign-key
// violation (SQLSTATE 23503). Inserting an interaction row against a
// missing entry or user surfaces as this, and stores translate it to
// ErrNotFound.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
