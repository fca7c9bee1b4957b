package ledger

import (
	"fmt"
	"time"
)

// CutoffPolicy maps a transaction timestamp to the calendar revenue date
// it is recognized under. Implementations are pure and total.
type CutoffPolicy interface {
	// Assign returns the revenue date at midnight in the timestamp's
	// location.
	Assign(t time.Time) time.Time
	// Name returns the policy's configuration name.
	Name() string
}

// IdentityCutoff assigns every timestamp to its own calendar date.
type IdentityCutoff struct{}

func (IdentityCutoff) Assign(t time.Time) time.Time {
	return midnight(t)
}

func (IdentityCutoff) Name() string { return "identity" }

// NoonCutoff assigns timestamps before 12:00:00 to the previous calendar
// day; at or after noon the timestamp keeps its own day. This matches a
// front office whose accounting day closes at noon.
type NoonCutoff struct{}

func (NoonCutoff) Assign(t time.Time) time.Time {
	day := midnight(t)
	if t.Hour() < 12 {
		return day.AddDate(0, 0, -1)
	}
	return day
}

func (NoonCutoff) Name() string { return "noon" }

// PolicyFromName returns the cutoff policy for a configuration name.
func PolicyFromName(name string) (CutoffPolicy, error) {
	switch name {
	case "identity":
		return IdentityCutoff{}, nil
	case "noon":
		return NoonCutoff{}, nil
	default:
		return nil, fmt.Errorf("unknown cutoff policy %q (want identity or noon)", name)
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateKey formats a revenue date as its canonical YYYY-MM-DD key.
func DateKey(d time.Time) string {
	return d.Format("2006-01-02")
}
