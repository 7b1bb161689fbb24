package model

import (
	"encoding/json"
	"testing"
)

// TestReasonString tests the String method of Reason.
func TestReasonString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		reason   Reason
		expected string
	}{
		{ShortReason(), "short"},
		{MarkerReason("TODO"), "marker:TODO"},
		{Reason{Kind: ReasonKind(42)}, "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.reason.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.reason.String(), tc.expected)
			}
		})
	}
}

// TestJoinReasons tests rendering a reason list.
func TestJoinReasons(t *testing.T) {
	t.Parallel()

	got := JoinReasons([]Reason{ShortReason(), MarkerReason("Placeholder")})
	if got != "short, marker:Placeholder" {
		t.Errorf("unexpected join result %q", got)
	}
	if JoinReasons(nil) != "" {
		t.Error("expected empty string for no reasons")
	}
}

// TestReasonKindJSON tests that reason kinds encode by name.
func TestReasonKindJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(MarkerReason("TODO"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"kind":"marker","marker":"TODO"}` {
		t.Errorf("unexpected JSON %s", data)
	}

	var r Reason
	if err := json.Unmarshal([]byte(`{"kind":"short"}`), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Kind != ReasonShort {
		t.Errorf("expected ReasonShort, got %v", r.Kind)
	}

	if err := json.Unmarshal([]byte(`{"kind":"bogus"}`), &r); err == nil {
		t.Error("expected error for unknown kind")
	}
}
