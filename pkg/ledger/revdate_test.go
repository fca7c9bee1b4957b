package ledger

import (
	"testing"
	"time"
)

func TestNoonCutoffAssign(t *testing.T) {
	tests := []struct {
		name     string
		ts       time.Time
		expected string
	}{
		{"just before noon rolls back", time.Date(2024, 3, 15, 11, 59, 59, 0, time.Local), "2024-03-14"},
		{"exactly noon keeps day", time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local), "2024-03-15"},
		{"afternoon keeps day", time.Date(2024, 3, 15, 18, 30, 0, 0, time.Local), "2024-03-15"},
		{"midnight rolls back", time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local), "2024-03-14"},
		{"first of month rolls into previous month", time.Date(2024, 3, 1, 3, 0, 0, 0, time.Local), "2024-02-29"},
	}

	policy := NoonCutoff{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateKey(policy.Assign(tt.ts))
			if got != tt.expected {
				t.Errorf("Assign(%v) = %s, expected %s", tt.ts, got, tt.expected)
			}
		})
	}
}

func TestIdentityCutoffAssign(t *testing.T) {
	policy := IdentityCutoff{}
	ts := time.Date(2024, 3, 15, 0, 30, 0, 0, time.Local)
	if got := DateKey(policy.Assign(ts)); got != "2024-03-15" {
		t.Errorf("Assign(%v) = %s, expected 2024-03-15", ts, got)
	}
}

func TestPolicyFromName(t *testing.T) {
	for _, name := range []string{"identity", "noon"} {
		policy, err := PolicyFromName(name)
		if err != nil {
			t.Fatalf("PolicyFromName(%q) returned error: %v", name, err)
		}
		if policy.Name() != name {
			t.Errorf("policy.Name() = %q, expected %q", policy.Name(), name)
		}
	}

	if _, err := PolicyFromName("midnight"); err == nil {
		t.Error("PolicyFromName(\"midnight\") should fail")
	}
}
