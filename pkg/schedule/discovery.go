package schedule

import (
	"github.com/thiagorcdl/autovisa/pkg/browser"
	"github.com/thiagorcdl/autovisa/pkg/logging"
)

// Discovery parses the authenticated landing page into the applicant's
// current appointments.
type Discovery struct {
	driver browser.Driver
	log    *logging.Logger
}

// NewDiscovery creates a discovery step over the given driver.
func NewDiscovery(driver browser.Driver, log *logging.Logger) *Discovery {
	return &Discovery{driver: driver, log: log}
}

// Discover enumerates every appointment card on the current page and returns
// the appointments matching applicantInfo, in page order. An empty
// applicantInfo matches every card. Zero cards or zero matches is a normal
// empty result, never an error.
//
// A card whose text does not match the expected patterns fails only for
// itself: the parse error is logged and the card skipped.
func (d *Discovery) Discover(applicantInfo string) ([]Appointment, error) {
	cards, err := d.driver.FindAll(appointmentCard)
	if err != nil {
		return nil, err
	}

	appointments := make([]Appointment, 0, len(cards))
	for i, card := range cards {
		appt, err := d.parseCard(card)
		if err != nil {
			d.log.Warnf("Skipping malformed appointment card %d: %v", i, err)
			continue
		}

		if applicantInfo != "" && !appt.Matches(applicantInfo) {
			// Never reschedule someone else's booking.
			d.log.Infof("Ignoring appointment for another applicant: %s", appt)
			continue
		}

		d.log.Infof("Discovered appointment: %s", appt)
		appointments = append(appointments, appt)
	}

	return appointments, nil
}

// parseCard builds an Appointment from one card element.
func (d *Discovery) parseCard(card browser.Element) (Appointment, error) {
	addressEl, err := card.Find(addressBlock)
	if err != nil {
		return Appointment{}, &ParseError{Block: "address", Text: "<element missing>"}
	}
	addressText, err := addressEl.Text()
	if err != nil {
		return Appointment{}, &ParseError{Block: "address", Text: "<unreadable>"}
	}

	day, month, year, timeOfDay, city, err := parseAddress(addressText)
	if err != nil {
		return Appointment{}, err
	}

	// The applicant block is optional on some portal revisions.
	var name, passport string
	if applicantEl, err := card.Find(applicantBlock); err == nil {
		if text, err := applicantEl.Text(); err == nil {
			if n, p, err := parseApplicant(text); err == nil {
				name, passport = n, p
			} else {
				return Appointment{}, err
			}
		}
	}

	appt, err := NewAppointment(day, month, year, timeOfDay, city, name, passport)
	if err != nil {
		return Appointment{}, err
	}

	if linkEl, err := card.Find(cardLink); err == nil {
		if href, err := linkEl.Attribute("href"); err == nil {
			appt.RescheduleLink = href
		}
	}

	return appt, nil
}
