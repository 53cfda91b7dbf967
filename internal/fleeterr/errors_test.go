package fleeterr

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := Validationf("plate", "too short: %q", "A")
	if !IsValidation(err) {
		t.Fatalf("expected validation error")
	}
	if got := err.Error(); got != `plate: too short: "A"` {
		t.Fatalf("unexpected message: %s", got)
	}

	// 包装后仍可识别
	wrapped := fmt.Errorf("create vehicle: %w", err)
	if !IsValidation(wrapped) {
		t.Fatalf("expected wrapped validation error to match")
	}
}

func TestConflictRuleFilter(t *testing.T) {
	err := Conflictf("overlap", "blocks overlap")
	if !IsConflict(err, "") {
		t.Fatalf("expected conflict with empty rule filter")
	}
	if !IsConflict(err, "overlap") {
		t.Fatalf("expected conflict rule overlap")
	}
	if IsConflict(err, "duplicate_plate") {
		t.Fatalf("rule filter should not match other rules")
	}
	if IsConflict(io.EOF, "") {
		t.Fatalf("plain error is not a conflict")
	}
}

func TestTransientWrapping(t *testing.T) {
	if Transient("list", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}

	err := Transient("list vehicles", io.EOF)
	if !IsTransient(err) {
		t.Fatalf("expected transient error")
	}
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected unwrap to reach the cause")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("get vehicle: %w", ErrNotFound)) {
		t.Fatalf("expected wrapped ErrNotFound to match")
	}
	if IsNotFound(io.EOF) {
		t.Fatalf("unrelated error should not match")
	}
}
