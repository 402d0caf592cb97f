package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormat renders calendar dates the way the portal's payloads and our
// logs spell them.
const DateFormat = "2006-01-02"

// Appointment is an immutable record of one booked (or prospective) slot:
// a calendar date, an optional HH:MM time, a location, and the applicant it
// belongs to. Candidate appointments have no time until the final
// time-selection step.
type Appointment struct {
	Date time.Time
	Time string // HH:MM, empty for not-yet-selected candidates
	City string

	// Applicant identity, uppercased at construction for matching.
	// Either field may be empty.
	ApplicantName string
	Passport      string

	// RescheduleLink is the per-card link to this appointment's
	// reschedule page, when the landing page exposed one.
	RescheduleLink string
}

// NewAppointment builds an appointment, validating that the date exists on
// the calendar. Applicant fields are uppercased.
func NewAppointment(day, month, year int, timeOfDay, city, applicantName, passport string) (Appointment, error) {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return Appointment{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}

	return Appointment{
		Date:          date,
		Time:          timeOfDay,
		City:          city,
		ApplicantName: strings.ToUpper(strings.TrimSpace(applicantName)),
		Passport:      strings.ToUpper(strings.TrimSpace(passport)),
	}, nil
}

// Matches reports whether the given applicant info (name or passport,
// any casing) identifies this appointment's applicant.
func (a Appointment) Matches(applicantInfo string) bool {
	info := strings.ToUpper(strings.TrimSpace(applicantInfo))
	if info == "" {
		return false
	}
	return info == a.ApplicantName || info == a.Passport
}

// ApplicantID returns the name when known, otherwise the passport.
// Empty when the card carried no applicant block.
func (a Appointment) ApplicantID() string {
	if a.ApplicantName != "" {
		return a.ApplicantName
	}
	return a.Passport
}

// String returns the canonical representation used in logs and assertions:
// "YYYY-MM-DD <time> in <city>", plus " for <applicant>" when known.
func (a Appointment) String() string {
	repr := fmt.Sprintf("%s %s in %s", a.Date.Format(DateFormat), a.Time, a.City)
	if id := a.ApplicantID(); id != "" {
		repr += " for " + id
	}
	return repr
}

// addressPattern matches the appointment card's address block, e.g.
// "Consular Appointment: 21 November, 2023, 11:15 Toronto local time at Toronto"
var addressPattern = regexp.MustCompile(`(\d+) ([A-Za-z]+), (\d+), (\d{2}:\d{2}) ([A-Za-z][A-Za-z .]*?) local time`)

// applicantPattern matches the card's applicant block, e.g. "John Doe XY123456"
var applicantPattern = regexp.MustCompile(`^(.+?)\s+([A-Z]{1,2}\d{6,9})$`)

// parseAddress extracts (day, month, year, time, city) from a card's
// address block text.
func parseAddress(text string) (day, month, year int, timeOfDay, city string, err error) {
	m := addressPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, 0, "", "", &ParseError{Block: "address", Text: text}
	}

	day, _ = strconv.Atoi(m[1])
	year, _ = strconv.Atoi(m[3])

	month, err = monthNumber(m[2])
	if err != nil {
		return 0, 0, 0, "", "", &ParseError{Block: "address", Text: text}
	}

	return day, month, year, m[4], strings.TrimSpace(m[5]), nil
}

// parseApplicant extracts (name, passport) from a card's applicant block text.
func parseApplicant(text string) (name, passport string, err error) {
	m := applicantPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", "", &ParseError{Block: "applicant", Text: text}
	}
	return m[1], m[2], nil
}

// monthNumber maps a full English month name to its 1-based number.
func monthNumber(name string) (int, error) {
	name = strings.ToLower(name)
	if name == "" {
		return 0, fmt.Errorf("empty month name")
	}
	titled := strings.ToUpper(name[:1]) + name[1:]

	t, err := time.Parse("January", titled)
	if err != nil {
		return 0, fmt.Errorf("unknown month %q", name)
	}
	return int(t.Month()), nil
}
