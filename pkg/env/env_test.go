package env

import (
	"testing"
	"time"
)

func TestGetFallsBackOnBlank(t *testing.T) {
	t.Setenv("OPSPULSE_TEST_VALUE", "  ")
	if got := Get("OPSPULSE_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("OPSPULSE_TEST_VALUE", "set")
	if got := Get("OPSPULSE_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("OPSPULSE_TEST_DURATION", "250ms")
	if got := Duration("OPSPULSE_TEST_DURATION", time.Second); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", got)
	}
	t.Setenv("OPSPULSE_TEST_DURATION", "soon")
	if got := Duration("OPSPULSE_TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("expected fallback for malformed value, got %v", got)
	}
}
