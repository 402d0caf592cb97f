package schedule

import (
	"encoding/json"
	"fmt"

	"github.com/thiagorcdl/autovisa/pkg/browser"
)

// fakeElement is an in-memory browser.Element.
type fakeElement struct {
	text     string
	attrs    map[string]string
	children map[string]*fakeElement // keyed by Selector.String()

	clicks   int
	clickErr error
	onClick  func()
}

func (f *fakeElement) Click() error {
	f.clicks++
	if f.onClick != nil {
		f.onClick()
	}
	return f.clickErr
}

func (f *fakeElement) Text() (string, error) {
	return f.text, nil
}

func (f *fakeElement) Attribute(name string) (string, error) {
	return f.attrs[name], nil
}

func (f *fakeElement) Find(sel browser.Selector) (browser.Element, error) {
	if el, ok := f.children[sel.String()]; ok {
		return el, nil
	}
	return nil, browser.ErrElementNotFound
}

// appointmentCardElement builds a landing-page card for the given address
// and applicant text, with a reschedule link.
func appointmentCardElement(address, applicant, link string) *fakeElement {
	children := map[string]*fakeElement{
		addressBlock.String(): {text: address},
	}
	if applicant != "" {
		children[applicantBlock.String()] = &fakeElement{text: applicant}
	}
	if link != "" {
		children[cardLink.String()] = &fakeElement{attrs: map[string]string{"href": link}}
	}
	return &fakeElement{children: children}
}

// fakePortal simulates the booking portal behind the browser.Driver
// interface: a login page, a landing page with appointment cards, and
// per-appointment reschedule pages with a location dropdown, calendar, and
// availability payloads.
type fakePortal struct {
	url string

	loginURL   string
	landingURL string

	cards       []*fakeElement
	cityOptions []browser.SelectOption
	timeOptions []browser.SelectOption

	// availabilityRounds[r] maps city ID to its soonest dates during
	// probing round r (a refresh advances the round). Cities absent from
	// the map never surface the date control.
	availabilityRounds []map[string][]string

	selectedCity string
	exchanges    []browser.Exchange

	typed     map[browser.Element]string
	selected  []string // values passed to SelectByValue on the city select
	timesPick []string // values passed to SelectByValue on the time select

	// loginFails keeps the page on the sign-in URL after submit
	loginFails bool

	navigations []string
	refreshes   int
	clearCalls  int
	escapes     int
	submits     int
	confirms    int
	dayClicks   int

}

func newFakePortal() *fakePortal {
	return &fakePortal{
		loginURL:   "https://portal.test/en-ca/niv/users/sign_in",
		landingURL: "https://portal.test/en-ca/niv/schedule/groups",
		cityOptions: []browser.SelectOption{
			{Value: "", Label: "Select a location"},
			{Value: "94", Label: "Toronto"},
			{Value: "95", Label: "Vancouver"},
		},
		timeOptions: []browser.SelectOption{
			{Value: "", Label: ""},
			{Value: "08:00", Label: "08:00"},
			{Value: "11:30", Label: "11:30"},
		},
		typed: make(map[browser.Element]string),
	}
}

func (p *fakePortal) availability() map[string][]string {
	if len(p.availabilityRounds) == 0 {
		return nil
	}
	round := p.refreshes
	if round >= len(p.availabilityRounds) {
		round = len(p.availabilityRounds) - 1
	}
	return p.availabilityRounds[round]
}

func (p *fakePortal) onLogin() bool {
	return p.url == p.loginURL
}

func (p *fakePortal) onLanding() bool {
	return p.url == p.landingURL
}

func (p *fakePortal) Navigate(url string) error {
	p.navigations = append(p.navigations, url)
	p.url = url
	return nil
}

func (p *fakePortal) Refresh() error {
	p.refreshes++
	return nil
}

func (p *fakePortal) CurrentURL() string {
	return p.url
}

func (p *fakePortal) Find(sel browser.Selector) (browser.Element, error) {
	key := sel.String()

	if p.onLogin() {
		switch key {
		case "id=user_email", "id=user_password":
			return &fakeElement{attrs: map[string]string{"id": sel.Value}}, nil
		case consentCheckbox.String():
			return &fakeElement{}, nil
		case "id=commit":
			return &fakeElement{onClick: func() {
				if !p.loginFails {
					p.url = p.landingURL
				}
			}}, nil
		}
		return nil, browser.ErrElementNotFound
	}

	switch key {
	case dateControl.String():
		if len(p.availability()[p.selectedCity]) > 0 {
			return &fakeElement{}, nil
		}
		return nil, browser.ErrElementNotFound
	case freeDateCell.String():
		return &fakeElement{onClick: func() { p.dayClicks++ }}, nil
	case nextMonthCTA.String():
		return &fakeElement{}, nil
	case "id=" + submitKey:
		return &fakeElement{onClick: func() { p.submits++ }}, nil
	case modalConfirm.String():
		return &fakeElement{onClick: func() { p.confirms++ }}, nil
	}
	return nil, browser.ErrElementNotFound
}

func (p *fakePortal) FindAny(sels ...browser.Selector) (browser.Element, error) {
	for _, sel := range sels {
		if el, err := p.Find(sel); err == nil {
			return el, nil
		}
	}
	return nil, browser.ErrElementNotFound
}

func (p *fakePortal) FindAll(sel browser.Selector) ([]browser.Element, error) {
	if sel.String() == appointmentCard.String() && p.onLanding() {
		elements := make([]browser.Element, len(p.cards))
		for i, card := range p.cards {
			elements[i] = card
		}
		return elements, nil
	}
	return nil, nil
}

func (p *fakePortal) TypeSlowly(el browser.Element, text string) error {
	p.typed[el] += text
	return nil
}

func (p *fakePortal) SelectByValue(sel browser.Selector, value string) error {
	switch sel.String() {
	case citySelect.String():
		p.selectedCity = value
		p.selected = append(p.selected, value)
		if dates := p.availability()[value]; len(dates) > 0 {
			p.pushAvailabilityExchange(value, dates)
		}
	case timeSelect.String():
		p.timesPick = append(p.timesPick, value)
	}
	return nil
}

func (p *fakePortal) pushAvailabilityExchange(cityID string, dates []string) {
	entries := make([]map[string]string, len(dates))
	for i, d := range dates {
		entries[i] = map[string]string{"date": d, "business_day": "true"}
	}
	body, _ := json.Marshal(entries)
	p.exchanges = append(p.exchanges, browser.Exchange{
		Path: fmt.Sprintf("/appointment/days/%s.json", cityID),
		URL:  fmt.Sprintf("https://portal.test/appointment/days/%s.json", cityID),
		Body: body,
	})
}

func (p *fakePortal) SelectOptions(sel browser.Selector) ([]browser.SelectOption, error) {
	switch sel.String() {
	case citySelect.String():
		return p.cityOptions, nil
	case timeSelect.String():
		return p.timeOptions, nil
	}
	return nil, browser.ErrElementNotFound
}

func (p *fakePortal) SendEscape(sel browser.Selector) error {
	p.escapes++
	return nil
}

func (p *fakePortal) ClearExchanges() {
	p.clearCalls++
	p.exchanges = nil
}

func (p *fakePortal) Exchanges() []browser.Exchange {
	return p.exchanges
}

// backoffPacer is a no-op pacer with a hook on Backoff, used to simulate
// the portal invalidating the session while the engine sleeps.
type backoffPacer struct {
	onBackoff func()
	backoffs  int
}

func (p *backoffPacer) Quick()       {}
func (p *backoffPacer) Action()      {}
func (p *backoffPacer) PageLoad()    {}
func (p *backoffPacer) RequestPoll() {}
func (p *backoffPacer) Hibernate()   {}

func (p *backoffPacer) Backoff() {
	p.backoffs++
	if p.onBackoff != nil {
		p.onBackoff()
	}
}
