package params

import (
	"errors"
	"testing"

	"github.com/nourish-labs/mealplan-mcp/identity"
)

func TestBindEmpty(t *testing.T) {
	bound, err := Bind("", identity.Identity{UserID: "alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := bound["user_id"]; got != "alice" {
		t.Errorf("user_id = %v, want alice", got)
	}
	if _, ok := bound["session_id"]; ok {
		t.Error("session_id should be absent when identity has none")
	}
	if len(bound) != 1 {
		t.Errorf("bound has %d keys, want 1", len(bound))
	}
}

func TestBindMergesCallerParams(t *testing.T) {
	bound, err := Bind(`{"age": 30, "goal": "fat_loss"}`, identity.Identity{UserID: "alice", SessionID: "s-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := bound["age"]; got != float64(30) {
		t.Errorf("age = %v, want 30", got)
	}
	if got := bound["goal"]; got != "fat_loss" {
		t.Errorf("goal = %v, want fat_loss", got)
	}
	if got := bound["user_id"]; got != "alice" {
		t.Errorf("user_id = %v, want alice", got)
	}
	if got := bound["session_id"]; got != "s-1" {
		t.Errorf("session_id = %v, want s-1", got)
	}
}

func TestBindCallerValueWins(t *testing.T) {
	bound, err := Bind(`{"user_id": "bob", "session_id": "caller-session"}`, identity.Identity{UserID: "alice", SessionID: "s-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := bound["user_id"]; got != "bob" {
		t.Errorf("user_id = %v, want caller-supplied bob", got)
	}
	if got := bound["session_id"]; got != "caller-session" {
		t.Errorf("session_id = %v, want caller-supplied value", got)
	}
}

func TestBindRejectsNonObject(t *testing.T) {
	tests := []struct {
		name       string
		paramsJSON string
	}{
		{"array", `[1, 2]`},
		{"scalar", `5`},
		{"string", `"hello"`},
		{"null", `null`},
		{"invalid", `{"age": }`},
		{"truncated", `{"age": 30`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bind(tt.paramsJSON, identity.Identity{UserID: "alice"})
			if err == nil {
				t.Fatalf("Bind(%q) = nil error, want *InvalidParameterError", tt.paramsJSON)
			}

			var invalidErr *InvalidParameterError
			if !errors.As(err, &invalidErr) {
				t.Errorf("Bind(%q) returned %T, want *InvalidParameterError", tt.paramsJSON, err)
			}
		})
	}
}
