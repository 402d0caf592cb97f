// Package supervisor keeps the rescheduling engine running indefinitely.
// Each attempt runs against a fresh browser session; between attempts the
// supervisor hibernates so the portal sees a plausible visit cadence rather
// than a tight polling loop.
package supervisor

import (
	"sync"

	"github.com/thiagorcdl/autovisa/pkg/logging"
	"github.com/thiagorcdl/autovisa/pkg/notify"
	"github.com/thiagorcdl/autovisa/pkg/pacing"
	"github.com/thiagorcdl/autovisa/pkg/schedule"
)

// Runner performs a single full reschedule attempt, from login to result.
type Runner interface {
	RunOnce() (*schedule.Result, error)
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func() (*schedule.Result, error)

func (f RunnerFunc) RunOnce() (*schedule.Result, error) { return f() }

// Supervisor loops reschedule attempts until stopped. Attempt failures are
// logged and reported but never terminate the loop; the portal's flakiness
// is the normal case, not the exceptional one.
type Supervisor struct {
	runner   Runner
	notifier notify.Notifier
	pacer    pacing.Pacer
	log      *logging.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// New creates a supervisor over the given runner.
func New(runner Runner, notifier notify.Notifier, pacer pacing.Pacer, log *logging.Logger) *Supervisor {
	return &Supervisor{
		runner:   runner,
		notifier: notifier,
		pacer:    pacer,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the attempt loop in the background. Calling Start on a
// running supervisor is a no-op.
func (s *Supervisor) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	s.wg.Add(1)
	go s.loop()
}

// Stop signals the loop to exit and waits for the current attempt to
// finish. A hibernating supervisor wakes up immediately.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
}

func (s *Supervisor) loop() {
	defer s.wg.Done()

	for attempt := 1; ; attempt++ {
		select {
		case <-s.stopCh:
			s.log.Infof("Supervisor stopped after %d attempts", attempt-1)
			return
		default:
		}

		s.log.Infof("Starting attempt %d", attempt)
		s.runAttempt()

		select {
		case <-s.stopCh:
			s.log.Infof("Supervisor stopped after %d attempts", attempt)
			return
		default:
		}

		s.log.Infof("Hibernating until next attempt")
		if !s.hibernate() {
			s.log.Infof("Supervisor stopped after %d attempts", attempt)
			return
		}
	}
}

// hibernate sleeps for the pacer's hibernation period, returning early with
// false when the supervisor is stopped mid-sleep.
func (s *Supervisor) hibernate() bool {
	done := make(chan struct{})
	go func() {
		s.pacer.Hibernate()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-s.stopCh:
		return false
	}
}

func (s *Supervisor) runAttempt() {
	result, err := s.runner.RunOnce()
	if err != nil {
		s.log.Errorf("Attempt failed: %v", err)
		if nerr := s.notifier.RunFailed(err); nerr != nil {
			s.log.Warnf("Failure notification not delivered: %v", nerr)
		}
		return
	}

	s.log.Infof("Attempt finished: %d appointments, %d rebooked",
		result.Discovered, len(result.Rebooked))
	for _, rb := range result.Rebooked {
		if nerr := s.notifier.Rebooked(rb.Previous, rb.New); nerr != nil {
			s.log.Warnf("Rebooking notification not delivered: %v", nerr)
		}
	}
}
