// Package pacing centralizes every blocking wait the bot performs.
//
// The portal is driven the way a person would drive it: a short jittered
// pause after each interaction, a fixed settle time after navigation, and
// long randomized backoffs between probing rounds. Making the policy an
// explicit value (instead of sprinkling time.Sleep calls or wrapping
// functions in delay decorators) keeps the waits visible at call sites and
// lets tests substitute a no-op.
package pacing

import (
	"math/rand"
	"time"
)

// Pacer is the timing policy consumed by the browser adapter and the
// rescheduling engine. Every method blocks.
type Pacer interface {
	// Quick pauses for under a second, used between individual keystrokes
	// and minor UI interactions.
	Quick()

	// Action pauses for the standard post-interaction jitter.
	Action()

	// PageLoad pauses long enough for a navigation to settle.
	PageLoad()

	// RequestPoll pauses between scans of the captured network exchanges.
	RequestPoll()

	// Backoff pauses between probing rounds when no candidate was found.
	Backoff()

	// Hibernate pauses between full supervised runs.
	Hibernate()
}

// Durations configures a RandomPacer. Ranges are inclusive lower bounds and
// exclusive upper bounds for the jittered waits.
type Durations struct {
	QuickMax      time.Duration
	ActionMin     time.Duration
	ActionMax     time.Duration
	PageLoad      time.Duration
	RequestPoll   time.Duration
	BackoffMin    time.Duration
	BackoffMax    time.Duration
	HibernateMin  time.Duration
	HibernateMax  time.Duration
}

// DefaultDurations returns the human-pacing defaults.
func DefaultDurations() Durations {
	return Durations{
		QuickMax:     time.Second,
		ActionMin:    time.Second,
		ActionMax:    2 * time.Second,
		PageLoad:     2500 * time.Millisecond,
		RequestPoll:  time.Second,
		BackoffMin:   10 * time.Second,
		BackoffMax:   20 * time.Second,
		HibernateMin: 5 * time.Minute,
		HibernateMax: 10 * time.Minute,
	}
}

// RandomPacer implements Pacer with jittered real-time sleeps.
type RandomPacer struct {
	durations Durations

	// sleep is swapped out in tests
	sleep func(time.Duration)
	rand  *rand.Rand
}

// NewRandomPacer creates a pacer with the given durations.
func NewRandomPacer(d Durations) *RandomPacer {
	return &RandomPacer{
		durations: d,
		sleep:     time.Sleep,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewDefaultPacer creates a pacer with DefaultDurations.
func NewDefaultPacer() *RandomPacer {
	return NewRandomPacer(DefaultDurations())
}

// jitter returns a random duration in [min, max). A non-positive range
// collapses to min.
func (p *RandomPacer) jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(p.rand.Int63n(int64(max-min)))
}

func (p *RandomPacer) Quick() {
	p.sleep(p.jitter(0, p.durations.QuickMax))
}

func (p *RandomPacer) Action() {
	p.sleep(p.jitter(p.durations.ActionMin, p.durations.ActionMax))
}

func (p *RandomPacer) PageLoad() {
	p.sleep(p.durations.PageLoad)
}

func (p *RandomPacer) RequestPoll() {
	p.sleep(p.durations.RequestPoll)
}

func (p *RandomPacer) Backoff() {
	p.sleep(p.jitter(p.durations.BackoffMin, p.durations.BackoffMax))
}

func (p *RandomPacer) Hibernate() {
	p.sleep(p.jitter(p.durations.HibernateMin, p.durations.HibernateMax))
}

// NopPacer never waits. Used in tests.
type NopPacer struct{}

func (NopPacer) Quick()       {}
func (NopPacer) Action()      {}
func (NopPacer) PageLoad()    {}
func (NopPacer) RequestPoll() {}
func (NopPacer) Backoff()     {}
func (NopPacer) Hibernate()   {}
