package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagorcdl/autovisa/pkg/browser"
	"github.com/thiagorcdl/autovisa/pkg/logging"
)

// probeDriver simulates just enough of the reschedule page for the prober:
// a location selection, a date control that may or may not surface, and an
// exchange buffer whose availability payload arrives asynchronously.
type probeDriver struct {
	// dateControlAfter is how many Find calls happen before the date
	// control surfaces; negative means it never appears.
	dateControlAfter int
	findCalls        int

	// exchangesAfter is how many Exchanges scans happen before the
	// payload shows up; negative means it never does.
	exchangesAfter int
	exchangeScans  int
	payload        []browser.Exchange

	clearCalls int
	escapes    int
	selected   []string
}

func (d *probeDriver) Navigate(string) error { return nil }
func (d *probeDriver) Refresh() error        { return nil }
func (d *probeDriver) CurrentURL() string    { return "https://portal.test/schedule" }

func (d *probeDriver) Find(sel browser.Selector) (browser.Element, error) {
	if sel.String() == dateControl.String() {
		d.findCalls++
		if d.dateControlAfter >= 0 && d.findCalls > d.dateControlAfter {
			return &fakeElement{}, nil
		}
	}
	return nil, browser.ErrElementNotFound
}

func (d *probeDriver) FindAny(sels ...browser.Selector) (browser.Element, error) {
	for _, sel := range sels {
		if el, err := d.Find(sel); err == nil {
			return el, nil
		}
	}
	return nil, browser.ErrElementNotFound
}

func (d *probeDriver) FindAll(browser.Selector) ([]browser.Element, error) { return nil, nil }

func (d *probeDriver) TypeSlowly(browser.Element, string) error { return nil }

func (d *probeDriver) SelectByValue(sel browser.Selector, value string) error {
	d.selected = append(d.selected, value)
	return nil
}

func (d *probeDriver) SelectOptions(browser.Selector) ([]browser.SelectOption, error) {
	return nil, browser.ErrElementNotFound
}

func (d *probeDriver) SendEscape(browser.Selector) error {
	d.escapes++
	return nil
}

func (d *probeDriver) ClearExchanges() {
	d.clearCalls++
}

func (d *probeDriver) Exchanges() []browser.Exchange {
	d.exchangeScans++
	if d.exchangesAfter >= 0 && d.exchangeScans > d.exchangesAfter {
		return d.payload
	}
	return nil
}

// countingPacer counts waits without blocking.
type countingPacer struct {
	quicks, actions, pageLoads, polls, backoffs, hibernates int
}

func (p *countingPacer) Quick()       { p.quicks++ }
func (p *countingPacer) Action()      { p.actions++ }
func (p *countingPacer) PageLoad()    { p.pageLoads++ }
func (p *countingPacer) RequestPoll() { p.polls++ }
func (p *countingPacer) Backoff()     { p.backoffs++ }
func (p *countingPacer) Hibernate()   { p.hibernates++ }

func availabilityExchange(path string, body string) browser.Exchange {
	return browser.Exchange{Path: path, URL: "https://portal.test" + path, Body: []byte(body)}
}

func TestProbeCityNoDateControl(t *testing.T) {
	driver := &probeDriver{dateControlAfter: -1, exchangesAfter: -1}
	prober := NewProber(driver, &countingPacer{}, logging.NewDiscardLogger("test"))

	candidate, err := prober.ProbeCity("94", "Toronto")

	// Absence of the date control is a normal empty result, not an error.
	require.NoError(t, err)
	assert.Nil(t, candidate)

	assert.Equal(t, DefaultDateControlAttempts, driver.findCalls)
	assert.Equal(t, 1, driver.clearCalls)
	assert.Equal(t, 1, driver.escapes)
	assert.Equal(t, []string{"94"}, driver.selected)
}

func TestProbeCityImmediatePayload(t *testing.T) {
	driver := &probeDriver{
		dateControlAfter: 0,
		exchangesAfter:   0,
		payload: []browser.Exchange{
			availabilityExchange("/appointment/days/94.json",
				`[{"date":"2025-06-10"},{"date":"2025-06-18"}]`),
		},
	}
	prober := NewProber(driver, &countingPacer{}, logging.NewDiscardLogger("test"))

	candidate, err := prober.ProbeCity("94", "Toronto")
	require.NoError(t, err)
	require.NotNil(t, candidate)

	// The payload lists dates soonest first; the probe takes the first.
	assert.Equal(t, "2025-06-10", candidate.Date.Format(DateFormat))
	assert.Equal(t, "Toronto", candidate.City)
	assert.Equal(t, "94", candidate.CityID)
}

func TestProbeCityPayloadArrivesLate(t *testing.T) {
	pacer := &countingPacer{}
	driver := &probeDriver{
		dateControlAfter: 0,
		exchangesAfter:   3,
		payload: []browser.Exchange{
			availabilityExchange("/appointment/days/95.json", `[{"date":"2025-04-02"}]`),
		},
	}
	prober := NewProber(driver, pacer, logging.NewDiscardLogger("test"))

	candidate, err := prober.ProbeCity("95", "Vancouver")
	require.NoError(t, err)
	require.NotNil(t, candidate)

	assert.Equal(t, "2025-04-02", candidate.Date.Format(DateFormat))
	assert.Equal(t, 3, pacer.polls)
}

func TestProbeCityPayloadNeverArrives(t *testing.T) {
	driver := &probeDriver{dateControlAfter: 0, exchangesAfter: -1}
	prober := NewProber(driver, &countingPacer{}, logging.NewDiscardLogger("test"))

	candidate, err := prober.ProbeCity("94", "Toronto")

	assert.ErrorIs(t, err, ErrJSONNotFound)
	assert.Nil(t, candidate)
	assert.Equal(t, DefaultExchangeSearches+1, driver.exchangeScans)
}

func TestProbeCityIgnoresUnrelatedExchanges(t *testing.T) {
	driver := &probeDriver{
		dateControlAfter: 0,
		exchangesAfter:   0,
		payload: []browser.Exchange{
			availabilityExchange("/assets/app.css", "body{}"),
			availabilityExchange("/appointment", "<html></html>"),
			availabilityExchange("/appointment/days/94.json", `[{"date":"2025-03-14"}]`),
		},
	}
	prober := NewProber(driver, &countingPacer{}, logging.NewDiscardLogger("test"))

	candidate, err := prober.ProbeCity("94", "Toronto")
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, "2025-03-14", candidate.Date.Format(DateFormat))
}

func TestProbeCityEmptyPayload(t *testing.T) {
	driver := &probeDriver{
		dateControlAfter: 0,
		exchangesAfter:   0,
		payload: []browser.Exchange{
			availabilityExchange("/appointment/days/94.json", `[]`),
		},
	}
	prober := NewProber(driver, &countingPacer{}, logging.NewDiscardLogger("test"))

	candidate, err := prober.ProbeCity("94", "Toronto")
	require.NoError(t, err)
	assert.Nil(t, candidate)
}

func TestProbeCityMalformedPayload(t *testing.T) {
	driver := &probeDriver{
		dateControlAfter: 0,
		exchangesAfter:   0,
		payload: []browser.Exchange{
			availabilityExchange("/appointment/days/94.json", `{"error":"throttled"}`),
		},
	}
	prober := NewProber(driver, &countingPacer{}, logging.NewDiscardLogger("test"))

	_, err := prober.ProbeCity("94", "Toronto")
	assert.Error(t, err)
}
