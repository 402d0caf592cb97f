package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDate indicates an impossible calendar date.
	ErrInvalidDate = errors.New("invalid calendar date")

	// ErrAuthenticationFailed indicates the login form rejected the
	// credentials. Observed indirectly: the page did not progress past the
	// sign-in URL. Fatal to the run.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrJSONNotFound indicates one location's background availability
	// fetch never appeared within the retry ceiling. Recovered locally by
	// skipping the location.
	ErrJSONNotFound = errors.New("availability payload not found")

	// ErrSessionEnded indicates the page no longer reflects a live
	// scheduling session. Fatal to the run; the supervisor restarts the
	// whole session after a hibernation.
	ErrSessionEnded = errors.New("scheduling session ended")
)

// ParseError reports one appointment card whose text did not match the
// expected structure. It is always scoped to a single card: discovery logs
// it and moves on to the next card.
type ParseError struct {
	Block string // which block failed ("address" or "applicant")
	Text  string // the raw text that did not match
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s block: %q", e.Block, e.Text)
}
