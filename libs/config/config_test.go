package config

import (
	"testing"
	"time"
)

func TestInt(t *testing.T) {
	t.Setenv("CONFIG_TEST_INT", "7")
	if got := Int("CONFIG_TEST_INT", 3); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := Int("CONFIG_TEST_INT_UNSET", 3); got != 3 {
		t.Fatalf("expected fallback 3, got %d", got)
	}
	t.Setenv("CONFIG_TEST_INT", "not-a-number")
	if got := Int("CONFIG_TEST_INT", 3); got != 3 {
		t.Fatalf("expected fallback on garbage, got %d", got)
	}
	t.Setenv("CONFIG_TEST_INT", "-2")
	if got := Int("CONFIG_TEST_INT", 3); got != 3 {
		t.Fatalf("expected fallback on negative, got %d", got)
	}
}

func TestDurationSeconds(t *testing.T) {
	t.Setenv("CONFIG_TEST_POLL", "4")
	if got := DurationSeconds("CONFIG_TEST_POLL", 2); got != 4*time.Second {
		t.Fatalf("expected 4s, got %s", got)
	}
	if got := DurationSeconds("CONFIG_TEST_POLL_UNSET", 2); got != 2*time.Second {
		t.Fatalf("expected fallback 2s, got %s", got)
	}
}

func TestPort(t *testing.T) {
	t.Setenv("CONFIG_TEST_PORT", "8080")
	p, err := Port("CONFIG_TEST_PORT", "9090")
	if err != nil || p != "8080" {
		t.Fatalf("expected 8080, got %q err=%v", p, err)
	}
	t.Setenv("CONFIG_TEST_PORT", "70000")
	if _, err := Port("CONFIG_TEST_PORT", "9090"); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}
