package schedule

import (
	"fmt"
	"strings"

	"github.com/thiagorcdl/autovisa/pkg/browser"
	"github.com/thiagorcdl/autovisa/pkg/logging"
	"github.com/thiagorcdl/autovisa/pkg/pacing"
)

// State identifies where the engine is in one reschedule attempt.
type State string

const (
	StateLoggedOut              State = "logged_out"
	StateLoggedIn               State = "logged_in"
	StateAppointmentsDiscovered State = "appointments_discovered"
	StateProbing                State = "probing"
	StateFound                  State = "found"
	StateCommitting             State = "committing"
	StateDone                   State = "done"
	StateSessionInvalid         State = "session_invalid"
)

// DefaultMaxCalendarPages bounds how many months the committing step pages
// the calendar forward looking for a bookable day cell.
const DefaultMaxCalendarPages = 24

// Options configures one engine run.
type Options struct {
	// LoginURL is the portal's sign-in page.
	LoginURL string

	// SchedulePattern is the URL substring that marks a live scheduling
	// session. Checked before every probing re-entry.
	SchedulePattern string

	// Email and Password are the portal credentials.
	Email    string
	Password string

	// ApplicantInfo filters discovered appointments. Empty manages every
	// card on the landing page.
	ApplicantInfo string

	// Allowed restricts which locations are probed.
	Allowed AllowedLocations

	// Window is the configured blackout interval.
	Window ExclusionWindow

	// Production enables the final modal confirmation. When false the run
	// stops just before confirming (dry run).
	Production bool

	// MaxCalendarPages bounds the committing step's month paging.
	// Zero uses DefaultMaxCalendarPages.
	MaxCalendarPages int
}

// Rebooking pairs an appointment with the slot it was moved to.
type Rebooking struct {
	Previous Appointment
	New      Appointment
}

// Result summarizes one reschedule attempt.
type Result struct {
	// Discovered is the number of appointments matching the applicant.
	Discovered int

	// Rebooked lists the appointments that were moved to an earlier date,
	// with the newly selected date, time, and city.
	Rebooked []Rebooking
}

// Engine is the top-level state machine: it logs in, discovers the
// applicant's appointments, and for each one runs the probe-and-validate
// loop until a better date is found, the session dies, or (with several
// appointments queued) the round comes up empty and the next appointment
// gets its turn.
//
// Within one probing round the first location that clears validation wins;
// the engine does not finish the round to compare every location's result.
// Availability on this portal evaporates in seconds, so committing the
// first acceptable candidate beats holding out for a global best.
type Engine struct {
	driver browser.Driver
	pacer  pacing.Pacer
	log    *logging.Logger
	opts   Options

	discovery *Discovery
	prober    *Prober

	state State
}

// NewEngine wires an engine over the given driver and pacing policy.
func NewEngine(driver browser.Driver, pacer pacing.Pacer, log *logging.Logger, opts Options) *Engine {
	if opts.MaxCalendarPages <= 0 {
		opts.MaxCalendarPages = DefaultMaxCalendarPages
	}
	return &Engine{
		driver:    driver,
		pacer:     pacer,
		log:       log,
		opts:      opts,
		discovery: NewDiscovery(driver, log),
		prober:    NewProber(driver, pacer, log),
		state:     StateLoggedOut,
	}
}

// State returns the engine's current state.
func (e *Engine) State() State {
	return e.state
}

func (e *Engine) setState(s State) {
	e.log.Debugf("state: %s -> %s", e.state, s)
	e.state = s
}

// Run performs one reschedule attempt. It returns normally whether or not a
// rebooking occurred; authentication failure and session invalidation come
// back as errors for the supervisor to handle.
func (e *Engine) Run() (*Result, error) {
	e.setState(StateLoggedOut)
	if err := e.login(); err != nil {
		return nil, err
	}
	e.setState(StateLoggedIn)

	appointments, err := e.discovery.Discover(e.opts.ApplicantInfo)
	if err != nil {
		return nil, fmt.Errorf("appointment discovery failed: %w", err)
	}
	if len(appointments) == 0 {
		e.log.Infof("No upcoming appointments found")
		e.setState(StateDone)
		return &Result{}, nil
	}
	e.setState(StateAppointmentsDiscovered)

	// Each appointment is rescheduled from this page; it is reloaded
	// between iterations so every attempt starts from a consistent state.
	landingURL := e.driver.CurrentURL()

	result := &Result{Discovered: len(appointments)}
	retrySame := len(appointments) == 1

	for i, appt := range appointments {
		rebooked, err := e.rescheduleOne(appt, retrySame)
		if err != nil {
			return result, err
		}
		if rebooked != nil {
			result.Rebooked = append(result.Rebooked, Rebooking{Previous: appt, New: *rebooked})
		}

		if i < len(appointments)-1 {
			if err := e.driver.Navigate(landingURL); err != nil {
				return result, fmt.Errorf("failed to reload appointment list: %w", err)
			}
			e.pacer.PageLoad()
			e.setState(StateAppointmentsDiscovered)
		}
	}

	e.setState(StateDone)
	return result, nil
}

// login navigates to the sign-in page, submits credentials, and accepts the
// privacy consent. Failure is observed indirectly: the page never leaves
// the sign-in URL.
func (e *Engine) login() error {
	if err := e.driver.Navigate(e.opts.LoginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	e.pacer.PageLoad()

	emailEl, err := e.driver.FindAny(browser.Fallbacks(emailInputKey)...)
	if err != nil {
		return fmt.Errorf("%w: email field not found", ErrAuthenticationFailed)
	}
	e.pacer.Action()
	if err := emailEl.Click(); err != nil {
		return fmt.Errorf("%w: email field not interactable", ErrAuthenticationFailed)
	}
	if err := e.driver.TypeSlowly(emailEl, e.opts.Email); err != nil {
		return fmt.Errorf("failed to enter email: %w", err)
	}

	passwordEl, err := e.driver.FindAny(browser.Fallbacks(passwordInputKey)...)
	if err != nil {
		return fmt.Errorf("%w: password field not found", ErrAuthenticationFailed)
	}
	e.pacer.Action()
	if err := passwordEl.Click(); err != nil {
		return fmt.Errorf("%w: password field not interactable", ErrAuthenticationFailed)
	}
	if err := e.driver.TypeSlowly(passwordEl, e.opts.Password); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}

	// Consent to the privacy policy, then submit.
	if consentEl, err := e.driver.Find(consentCheckbox); err == nil {
		e.pacer.Action()
		_ = consentEl.Click()
	}

	submitEl, err := e.driver.FindAny(browser.Fallbacks(loginSubmitKey)...)
	if err != nil {
		return fmt.Errorf("%w: submit button not found", ErrAuthenticationFailed)
	}
	e.pacer.Action()
	if err := submitEl.Click(); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}
	e.pacer.PageLoad()

	if strings.Contains(e.driver.CurrentURL(), "sign_in") {
		return fmt.Errorf("%w: page did not progress past sign-in", ErrAuthenticationFailed)
	}
	return nil
}

// rescheduleOne runs the probe-and-validate loop for a single appointment.
// When retrySame is false the appointment gets exactly one probing round
// before the engine moves on, so one slow location cannot starve the other
// discovered appointments.
func (e *Engine) rescheduleOne(appt Appointment, retrySame bool) (*Appointment, error) {
	e.log.Infof("Rescheduling %s", appt)

	if err := e.openReschedulePage(appt); err != nil {
		return nil, err
	}

	for round := 1; ; round++ {
		e.setState(StateProbing)

		candidate := e.probeRound(appt)
		if candidate != nil {
			e.setState(StateFound)
			return e.commit(appt, *candidate)
		}

		if !retrySame {
			e.log.Infof("No valid candidate for %s this round, moving on", appt)
			return nil, nil
		}

		e.log.Infof("... No good appointments found (round %d)", round)
		e.pacer.Backoff()

		// The portal silently invalidates idle sessions. Re-affirm before
		// refreshing so the loop can never spin against a dead session.
		if !strings.Contains(e.driver.CurrentURL(), e.opts.SchedulePattern) {
			e.setState(StateSessionInvalid)
			return nil, fmt.Errorf("%w: current page is %q", ErrSessionEnded, e.driver.CurrentURL())
		}

		if err := e.driver.Refresh(); err != nil {
			return nil, fmt.Errorf("failed to refresh reschedule page: %w", err)
		}
		e.pacer.PageLoad()
		e.log.Infof("... Checking cities again")
	}
}

// openReschedulePage navigates to the appointment's reschedule sub-page,
// preferring the card's own link over clicking through the accordion.
func (e *Engine) openReschedulePage(appt Appointment) error {
	if appt.RescheduleLink != "" {
		if err := e.driver.Navigate(appt.RescheduleLink); err != nil {
			return fmt.Errorf("failed to open reschedule page: %w", err)
		}
		e.pacer.PageLoad()
		return nil
	}

	for _, sel := range []browser.Selector{continueCTA, rescheduleSection, rescheduleCTA} {
		el, err := e.driver.Find(sel)
		if err != nil {
			return fmt.Errorf("reschedule navigation element %s not found", sel)
		}
		e.pacer.Action()
		if err := el.Click(); err != nil {
			return fmt.Errorf("failed to click %s: %w", sel, err)
		}
	}
	e.pacer.PageLoad()
	return nil
}

// probeRound iterates the location dropdown in its declared order, probing
// each allowed location and validating its soonest date against the current
// appointment. The first accepted candidate wins the round. Per-location
// failures are logged and skipped; they never abort the round.
func (e *Engine) probeRound(appt Appointment) *Candidate {
	options, err := e.driver.SelectOptions(citySelect)
	if err != nil {
		e.log.Warnf("Location dropdown not available: %v", err)
		return nil
	}

	for _, opt := range options {
		if opt.Value == "" {
			continue
		}
		label := strings.TrimSpace(opt.Label)
		if !e.opts.Allowed.Allows(label) {
			continue
		}

		candidate, err := e.prober.ProbeCity(opt.Value, label)
		if err != nil {
			e.log.Warnf("Skipping %s: %v", label, err)
			continue
		}
		if candidate == nil {
			continue
		}

		if !ValidateCandidate(candidate.Date, appt.Date, e.opts.Window) {
			if !candidate.Date.Before(appt.Date) {
				e.log.Infof("Best available date for %s ignored: %s (later than existing appointment)",
					label, candidate.Date.Format(DateFormat))
			} else {
				e.log.Infof("Best date for %s ignored: %s (within exclude date range)",
					label, candidate.Date.Format(DateFormat))
			}
			continue
		}

		e.log.Infof("//// New best date found: %s in %s", candidate.Date.Format(DateFormat), label)
		return candidate
	}
	return nil
}

// commit books the validated candidate: select its location, open the
// calendar, page forward to the earliest bookable day, take the latest time
// slot, and submit. The confirmation modal is only clicked in production.
func (e *Engine) commit(current Appointment, candidate Candidate) (*Appointment, error) {
	e.setState(StateCommitting)

	if err := e.driver.SelectByValue(citySelect, candidate.CityID); err != nil {
		return nil, fmt.Errorf("failed to select %s for booking: %w", candidate.City, err)
	}
	e.pacer.Action()

	calendarEl, err := e.driver.Find(dateControl)
	if err != nil {
		return nil, fmt.Errorf("date control vanished before booking: %w", err)
	}
	if err := calendarEl.Click(); err != nil {
		return nil, fmt.Errorf("failed to open calendar: %w", err)
	}
	e.pacer.Action()

	cell, err := e.findBookableDay()
	if err != nil {
		return nil, err
	}
	e.pacer.Quick()
	if err := cell.Click(); err != nil {
		return nil, fmt.Errorf("failed to select day cell: %w", err)
	}

	slot, err := e.selectLatestTime()
	if err != nil {
		return nil, err
	}

	submitEl, err := e.driver.FindAny(browser.Fallbacks(submitKey)...)
	if err != nil {
		return nil, fmt.Errorf("submit button not found")
	}
	e.pacer.Action()
	if err := submitEl.Click(); err != nil {
		return nil, fmt.Errorf("failed to submit booking: %w", err)
	}

	if e.opts.Production {
		confirmEl, err := e.driver.Find(modalConfirm)
		if err != nil {
			return nil, fmt.Errorf("confirmation modal not found")
		}
		e.pacer.Action()
		if err := confirmEl.Click(); err != nil {
			return nil, fmt.Errorf("failed to confirm booking: %w", err)
		}
	} else {
		e.log.Infof("Dry run: stopping before final confirmation")
	}

	rebooked := Appointment{
		Date:          candidate.Date,
		Time:          slot,
		City:          candidate.City,
		ApplicantName: current.ApplicantName,
		Passport:      current.Passport,
	}
	e.log.Infof("Rescheduled: %s -> %s", current, rebooked)
	return &rebooked, nil
}

// findBookableDay pages the calendar forward until a free day cell is
// interactable, bounded by MaxCalendarPages months.
func (e *Engine) findBookableDay() (browser.Element, error) {
	for page := 0; page <= e.opts.MaxCalendarPages; page++ {
		if cell, err := e.driver.Find(freeDateCell); err == nil {
			return cell, nil
		}

		next, err := e.driver.Find(nextMonthCTA)
		if err != nil {
			return nil, fmt.Errorf("calendar paging control not found")
		}
		if err := next.Click(); err != nil {
			return nil, fmt.Errorf("failed to advance calendar: %w", err)
		}
		e.pacer.Quick()
	}
	return nil, fmt.Errorf("no bookable day within %d months", e.opts.MaxCalendarPages)
}

// selectLatestTime picks the last offered time slot for the chosen day and
// returns its label.
func (e *Engine) selectLatestTime() (string, error) {
	options, err := e.driver.SelectOptions(timeSelect)
	if err != nil {
		return "", fmt.Errorf("time dropdown not available: %w", err)
	}

	var chosen *browser.SelectOption
	for i := range options {
		if options[i].Value != "" {
			chosen = &options[i]
		}
	}
	if chosen == nil {
		return "", fmt.Errorf("no time slots offered for the selected day")
	}

	e.pacer.Action()
	if err := e.driver.SelectByValue(timeSelect, chosen.Value); err != nil {
		return "", fmt.Errorf("failed to select time slot: %w", err)
	}
	return strings.TrimSpace(chosen.Label), nil
}
