package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))

	// wrapped postgres error still detected
	wrapped := fmt.Errorf("creating user: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, IsUniqueViolation(wrapped))

	// sqlite driver used in tests reports by message only
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: vouchers.code")))
	assert.True(t, IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "orders_pkey"`)))
}
