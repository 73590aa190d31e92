package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolationPgx(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "ux_taste_profiles_active"}

	if !IsUniqueViolation(err, "") {
		t.Fatal("expected 23505 to register as unique violation")
	}
	if !IsUniqueViolation(err, "ux_taste_profiles_active") {
		t.Fatal("expected constraint name match")
	}
	if IsUniqueViolation(err, "ux_bottle_shares") {
		t.Fatal("mismatched constraint must not match")
	}
}

func TestIsUniqueViolationPq(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "ux_bottle_shares"}
	if !IsUniqueViolation(err, "ux_bottle_shares") {
		t.Fatal("expected pq constraint match")
	}

	notUnique := &pq.Error{Code: "23503"}
	if IsUniqueViolation(notUnique, "") {
		t.Fatal("foreign key violations are not unique violations")
	}
}

func TestIsUniqueViolationWrapped(t *testing.T) {
	inner := &pgconn.PgError{Code: "23505"}
	wrapped := fmt.Errorf("insert share: %w", inner)
	if !IsUniqueViolation(wrapped, "") {
		t.Fatal("expected detection through wrapping")
	}
}

func TestIsUniqueViolationSQLiteMessage(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: bottle_shares.bottle_id, bottle_shares.shared_with_user_id")
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected sqlite duplicate message to match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated errors must not match")
	}
}
