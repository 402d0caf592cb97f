package schedule

import "time"

// ExclusionWindow is a closed date interval [Start, End] that must never be
// booked, regardless of being earlier than the current appointment.
// The zero value means no window is configured.
type ExclusionWindow struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether no window is configured.
func (w ExclusionWindow) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether the date falls inside the window. Both bounds
// are inclusive.
func (w ExclusionWindow) Contains(d time.Time) bool {
	if w.IsZero() {
		return false
	}
	return !d.Before(w.Start) && !d.After(w.End)
}

// ValidateCandidate is the single point that encodes what counts as a win.
// A candidate is accepted only when it is strictly earlier than the current
// appointment date and outside the exclusion window. The probing loop can
// therefore never commit a non-improving or blackout-period date.
func ValidateCandidate(candidate, current time.Time, window ExclusionWindow) bool {
	if !candidate.Before(current) {
		return false
	}
	return !window.Contains(candidate)
}
