package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/thiagorcdl/autovisa/pkg/browser"
	"github.com/thiagorcdl/autovisa/pkg/logging"
	"github.com/thiagorcdl/autovisa/pkg/pacing"
)

// Probe retry ceilings.
const (
	// DefaultDateControlAttempts bounds how many times the probe looks for
	// the date-picking control before concluding the location has no dates.
	DefaultDateControlAttempts = 3

	// DefaultExchangeSearches bounds how many polling rounds the probe
	// spends waiting for the availability payload to appear.
	DefaultExchangeSearches = 5
)

// Candidate is a prospective date discovered for one location, not yet
// committed.
type Candidate struct {
	Date   time.Time
	City   string
	CityID string
}

// Prober drives one location's calendar to fetch the soonest available date
// for that location.
type Prober struct {
	driver browser.Driver
	pacer  pacing.Pacer
	log    *logging.Logger

	dateControlAttempts int
	exchangeSearches    int
}

// NewProber creates a prober with the default retry ceilings.
func NewProber(driver browser.Driver, pacer pacing.Pacer, log *logging.Logger) *Prober {
	return &Prober{
		driver:              driver,
		pacer:               pacer,
		log:                 log,
		dateControlAttempts: DefaultDateControlAttempts,
		exchangeSearches:    DefaultExchangeSearches,
	}
}

// availabilityEntry is one slot in the portal's availability payload.
type availabilityEntry struct {
	Date string `json:"date"`
}

// ProbeCity selects one location and returns its soonest available date.
//
// A nil candidate with a nil error means the location currently offers no
// dates, which is a normal empty result. ErrJSONNotFound means the
// availability payload never appeared within the retry ceiling; callers
// skip the location.
//
// Side effects: mutates the UI's location selection and consumes the shared
// exchange buffer. Exchanges captured before this call are gone afterwards.
func (p *Prober) ProbeCity(cityID, cityName string) (*Candidate, error) {
	// Close any calendar left open by a previous probe, then reset the
	// exchange buffer so the selection's own fetch is the only thing in it.
	_ = p.driver.SendEscape(citySelect)
	p.driver.ClearExchanges()

	if err := p.driver.SelectByValue(citySelect, cityID); err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", cityName, err)
	}
	p.pacer.Action()

	if !p.surfaceDateControl() {
		// Not an error: the location simply has nothing bookable.
		p.log.Infof("No dates for %s", cityName)
		return nil, nil
	}

	exchange, err := p.findAvailabilityExchange(cityName)
	if err != nil {
		return nil, err
	}

	var entries []availabilityEntry
	if err := json.Unmarshal(exchange.Body, &entries); err != nil {
		return nil, fmt.Errorf("malformed availability payload for %s: %w", cityName, err)
	}
	if len(entries) == 0 {
		p.log.Infof("No dates for %s", cityName)
		return nil, nil
	}

	// The payload lists dates soonest first.
	date, err := time.Parse(DateFormat, entries[0].Date)
	if err != nil {
		return nil, fmt.Errorf("malformed availability date %q for %s: %w", entries[0].Date, cityName, err)
	}

	return &Candidate{Date: date, City: cityName, CityID: cityID}, nil
}

// surfaceDateControl waits for the date-picking control to appear, a bounded
// number of times. Selecting a location with no availability never renders
// the control.
func (p *Prober) surfaceDateControl() bool {
	for attempt := 0; attempt < p.dateControlAttempts; attempt++ {
		if _, err := p.driver.Find(dateControl); err == nil {
			return true
		}
		p.pacer.Action()
	}
	return false
}

// findAvailabilityExchange scans the captured exchanges for the location's
// background availability fetch, identified by a .json path suffix. The
// fetch is asynchronous and may not have completed yet, so the scan retries
// with a fixed inter-poll sleep up to the configured ceiling.
func (p *Prober) findAvailabilityExchange(cityName string) (browser.Exchange, error) {
	for search := 0; search <= p.exchangeSearches; search++ {
		for _, exchange := range p.driver.Exchanges() {
			if strings.HasSuffix(exchange.Path, ".json") {
				return exchange, nil
			}
		}
		p.pacer.RequestPoll()
	}

	p.log.Errorf("Availability payload not found for %s", cityName)
	return browser.Exchange{}, fmt.Errorf("%w for %s", ErrJSONNotFound, cityName)
}
