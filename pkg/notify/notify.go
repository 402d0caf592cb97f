// Package notify delivers run results to the operator over Telegram.
// Notification delivery is best effort: a failed send must never abort a
// rescheduling run that already succeeded against the portal.
package notify

import (
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/thiagorcdl/autovisa/pkg/logging"
	"github.com/thiagorcdl/autovisa/pkg/schedule"
)

// Notifier reports noteworthy run outcomes.
type Notifier interface {
	// Rebooked announces a successfully moved appointment.
	Rebooked(previous, current schedule.Appointment) error

	// RunFailed announces an aborted run.
	RunFailed(err error) error
}

// Nop is a Notifier that discards everything. Used when no Telegram token
// is configured.
type Nop struct{}

func (Nop) Rebooked(previous, current schedule.Appointment) error { return nil }
func (Nop) RunFailed(err error) error                             { return nil }

// sender is the slice of the Telegram API the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram delivers notifications to a single chat.
type Telegram struct {
	api    sender
	chatID int64
	log    *logging.Logger
}

// NewTelegram authenticates against the Telegram bot API. An empty token
// returns a Nop notifier instead.
func NewTelegram(token string, chatID int64, log *logging.Logger) (Notifier, error) {
	if token == "" {
		log.Infof("No Telegram token configured, notifications disabled")
		return Nop{}, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	log.Infof("Telegram notifier ready: @%s", api.Self.UserName)

	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

func (t *Telegram) Rebooked(previous, current schedule.Appointment) error {
	text := fmt.Sprintf("✅ Appointment rescheduled\n<b>%s</b>\nwas: %s",
		html.EscapeString(current.String()), html.EscapeString(previous.String()))
	return t.send(text)
}

func (t *Telegram) RunFailed(err error) error {
	return t.send(fmt.Sprintf("⚠️ Run failed: %s", html.EscapeString(err.Error())))
}

func (t *Telegram) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := t.api.Send(msg); err != nil {
		t.log.Warnf("Failed to send notification: %v", err)
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
