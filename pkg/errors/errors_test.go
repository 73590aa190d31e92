package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeDependency, cause, "saving bottle")

	if err.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", err.Code())
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
}

func TestAsUnwrapsThroughFmtWrapping(t *testing.T) {
	inner := New(CodeConflict, "duplicate share")
	outer := fmt.Errorf("sharing: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through fmt wrapping")
	}
	if typed.Code() != CodeConflict {
		t.Fatalf("expected conflict, got %s", typed.Code())
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(New(CodeConflict, "dup")) {
		t.Fatal("conflict must not be retryable")
	}
	if !Retryable(New(CodeDependency, "db down")) {
		t.Fatal("dependency errors must be retryable")
	}
	if Retryable(errors.New("untyped")) {
		t.Fatal("untyped errors must not be retryable")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(nil) != "" {
		t.Fatal("nil error has no code")
	}
	if CodeOf(errors.New("untyped")) != CodeInternal {
		t.Fatal("untyped errors default to internal")
	}
	if CodeOf(New(CodeNotFound, "missing")) != CodeNotFound {
		t.Fatal("typed code lost")
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if !meta.Retryable {
		t.Fatal("unknown codes fall back to internal metadata")
	}
}
