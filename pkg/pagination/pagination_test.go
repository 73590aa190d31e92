package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: uuid.New()}

	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("cursor mismatch: %+v vs %+v", out, in)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	cur, err := ParseCursor("  ")
	if err != nil || cur != nil {
		t.Fatalf("blank cursor should be nil, got %v / %v", cur, err)
	}
}

func TestParseCursorGarbage(t *testing.T) {
	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit {
		t.Fatal("zero should normalize to default")
	}
	if NormalizeLimit(1000) != MaxLimit {
		t.Fatal("oversized limit should clamp to max")
	}
	if LimitWithBuffer(10) != 11 {
		t.Fatal("buffer should add one row")
	}
}
