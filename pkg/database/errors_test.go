package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "sentinel", err: fmt.Errorf("%w: pool exhausted", ErrUnavailable), expected: true},
		{name: "bad conn", err: driver.ErrBadConn, expected: true},
		{name: "deadline", err: context.DeadlineExceeded, expected: true},
		{name: "dial", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, expected: true},
		{name: "too many connections", err: &pq.Error{Code: "53300"}, expected: true},
		{name: "admin shutdown", err: &pq.Error{Code: "57P01"}, expected: true},
		{name: "syntax error", err: &pq.Error{Code: "42601"}, expected: false},
		{name: "plain", err: errors.New("scan failed"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUnavailable(tt.err))
		})
	}
}

func TestIsConstraintViolation(t *testing.T) {
	fk := &pq.Error{Code: "23503", Constraint: "tools_category_id_fkey"}
	enum := &pq.Error{Code: "22P02"}
	check := &pq.Error{Code: "23514", Constraint: "chk_positive_cost"}

	assert.True(t, IsConstraintViolation(fk))
	assert.Equal(t, "tools_category_id_fkey", ConstraintName(fk))
	assert.True(t, IsConstraintViolation(enum))
	assert.True(t, IsConstraintViolation(check))
	assert.Equal(t, "chk_positive_cost", ConstraintName(check))
	assert.False(t, IsConstraintViolation(errors.New("other")))
	assert.Empty(t, ConstraintName(errors.New("other")))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%zoom%", ContainsPattern("zoom"))
	assert.Equal(t, `%100\%%`, ContainsPattern("100%"))
	assert.Equal(t, `%a\_b%`, ContainsPattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, ContainsPattern(`c:\dir`))
}
