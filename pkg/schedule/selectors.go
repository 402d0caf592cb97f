package schedule

import "github.com/thiagorcdl/autovisa/pkg/browser"

// Portal element selectors. Keys that go through browser.Fallbacks are bare
// identifiers tried as id, css, name, and class in order, which survives the
// portal shuffling its markup between revisions.
var (
	emailInputKey    = "user_email"
	passwordInputKey = "user_password"
	consentCheckbox  = browser.CSS(".icheckbox")
	loginSubmitKey   = "commit"

	appointmentCard = browser.CSS(".application.attend_appointment")
	addressBlock    = browser.CSS(".consular-appt")
	applicantBlock  = browser.CSS(".applicant-data")
	cardLink        = browser.CSS("a[href]")

	continueCTA = browser.CSS(
		"div.application:nth-child(1) > div:nth-child(1) > div:nth-child(2) " +
			"> ul:nth-child(1) > li:nth-child(1) > a:nth-child(1)")
	rescheduleSection = browser.CSS("li.accordion-item:nth-child(4) > a:nth-child(1)")
	rescheduleCTA     = browser.CSS(
		"li.accordion-item:nth-child(4) > div:nth-child(2) > div:nth-child(1) " +
			"> div:nth-child(2) > p:nth-child(2) > a:nth-child(1)")

	citySelect   = browser.ID("appointments_consulate_appointment_facility_id")
	dateControl  = browser.ID("appointments_consulate_appointment_date")
	timeSelect   = browser.ID("appointments_consulate_appointment_time")
	submitKey    = "appointments_consulate_appointment_submit"
	freeDateCell = browser.CSS(".ui-state-default[href]")
	nextMonthCTA = browser.CSS(".ui-datepicker-next")
	modalConfirm = browser.CSS("body > div.reveal-overlay > div > div > a.button.alert")
)
