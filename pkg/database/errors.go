package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
)

// ErrUnavailable marks failures to obtain a usable connection.
var ErrUnavailable = errors.New("database unavailable")

// Postgres error classes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	classConnectionException  = "08"
	classInsufficientResource = "53"
	classOperatorIntervention = "57"
	classIntegrityViolation   = "23"

	codeInvalidTextRepresentation = "22P02"
)

// IsUnavailable reports whether err means the store could not be reached, as opposed to a
// statement that reached it and failed.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrUnavailable) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case classConnectionException, classInsufficientResource, classOperatorIntervention:
			return true
		}
	}

	return false
}

// IsConstraintViolation reports whether the store rejected a write because of a constraint,
// including invalid values for enum typed columns.
func IsConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code.Class() == classIntegrityViolation || pqErr.Code == codeInvalidTextRepresentation
}

// ConstraintName returns the violated constraint name, if the driver reported one.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}
