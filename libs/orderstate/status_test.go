package orderstate

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	for _, raw := range []string{"PENDING", "IN_PROGRESS", "COMPLETED"} {
		s, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", raw, err)
		}
		if string(s) != raw {
			t.Fatalf("Parse(%q) = %q", raw, s)
		}
	}
	if _, err := Parse("BAKING"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if _, err := Parse(""); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus for empty input, got %v", err)
	}
}

func TestTerminal(t *testing.T) {
	if StatusPending.Terminal() || StatusInProgress.Terminal() {
		t.Fatal("only COMPLETED is terminal")
	}
	if !StatusCompleted.Terminal() {
		t.Fatal("COMPLETED must be terminal")
	}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name     string
		current  Status
		incoming Status
		want     Decision
	}{
		{"start preparation", StatusPending, StatusInProgress, Apply},
		{"complete", StatusInProgress, StatusCompleted, Apply},
		{"skip ahead", StatusPending, StatusCompleted, Reject},
		{"duplicate start", StatusInProgress, StatusInProgress, Ignore},
		{"duplicate pending", StatusPending, StatusPending, Ignore},
		{"duplicate complete", StatusCompleted, StatusCompleted, Ignore},
		{"after terminal", StatusCompleted, StatusInProgress, Ignore},
		{"backwards from terminal", StatusCompleted, StatusPending, Ignore},
		{"backwards", StatusInProgress, StatusPending, Reject},
	}
	for _, tc := range cases {
		if got := Evaluate(tc.current, tc.incoming); got != tc.want {
			t.Errorf("%s: Evaluate(%s, %s) = %s, want %s", tc.name, tc.current, tc.incoming, got, tc.want)
		}
	}
}

func TestEvaluateIsIdempotentAfterApply(t *testing.T) {
	// Re-delivering the event that produced the current status is a no-op.
	current := StatusPending
	if Evaluate(current, StatusInProgress) != Apply {
		t.Fatal("first delivery should apply")
	}
	current = StatusInProgress
	if Evaluate(current, StatusInProgress) != Ignore {
		t.Fatal("second delivery of the same event should be ignored")
	}
}
