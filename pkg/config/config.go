package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thiagorcdl/autovisa/pkg/pacing"
)

// ErrMissingCredentials indicates that no portal credentials were supplied
// via the config file or environment. Checked before any navigation happens.
var ErrMissingCredentials = errors.New("missing portal credentials")

// DateFormat is the wire format for calendar dates throughout the config
// and the portal's availability payloads.
const DateFormat = "2006-01-02"

// Config represents the full configuration for one autovisa process.
type Config struct {
	// Portal connection and session settings
	Portal PortalConfig `yaml:"portal"`

	// Applicant identifies whose appointments may be rescheduled
	Applicant ApplicantConfig `yaml:"applicant"`

	// Locations restricts which consulate locations are probed
	Locations LocationConfig `yaml:"locations"`

	// Exclusion is a closed date interval that must never be booked
	Exclusion ExclusionConfig `yaml:"exclusion"`

	// Notify configures the optional Telegram notifier
	Notify NotifyConfig `yaml:"notify"`

	// Pacing optionally overrides the timing policy's defaults
	Pacing PacingConfig `yaml:"pacing"`

	// Production enables the final submission and modal confirmation.
	// When false the engine stops just before submitting (dry run).
	Production bool `yaml:"production"`
}

// PortalConfig holds portal URLs and credentials.
type PortalConfig struct {
	// LoginURL is the sign-in page of the booking portal
	LoginURL string `yaml:"login_url"`

	// SchedulePattern is the URL substring that marks a live scheduling
	// session. When the current URL stops matching, the session is over.
	SchedulePattern string `yaml:"schedule_pattern"`

	// Email and Password may be left empty in the file and supplied via
	// the VISA_EMAIL / VISA_PASSWORD environment variables instead.
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// ApplicantConfig identifies the applicant whose bookings are managed.
type ApplicantConfig struct {
	// Info is the applicant's full name or passport/document number.
	// Matching is case-insensitive. Empty means "manage every card on the page".
	Info string `yaml:"info"`
}

// LocationConfig restricts the probed locations.
type LocationConfig struct {
	// Allowed is a list of location names or glob patterns. Empty means
	// every location the portal offers is considered.
	Allowed []string `yaml:"allowed"`
}

// ExclusionConfig is the configured blackout interval, inclusive on both ends.
type ExclusionConfig struct {
	Start string `yaml:"start"` // YYYY-MM-DD, empty disables the window
	End   string `yaml:"end"`   // YYYY-MM-DD
}

// NotifyConfig configures result notifications. Disabled when Token is empty.
type NotifyConfig struct {
	TelegramToken string `yaml:"telegram_token"`
	ChatID        int64  `yaml:"chat_id"`
}

// PacingConfig overrides selected timing defaults. Values are Go duration
// strings ("90s", "8m"); empty keeps the default.
type PacingConfig struct {
	// HibernateMin and HibernateMax bound the sleep between supervised runs.
	HibernateMin string `yaml:"hibernate_min"`
	HibernateMax string `yaml:"hibernate_max"`
}

// DefaultConfig returns a config with portal defaults filled in.
func DefaultConfig() Config {
	return Config{
		Portal: PortalConfig{
			LoginURL:        "https://ais.usvisa-info.com/en-ca/niv/users/sign_in",
			SchedulePattern: "schedule",
		},
	}
}

// Load reads a YAML config file, applies environment overrides, and validates.
// An empty path loads defaults plus environment only.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables when set.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("VISA_EMAIL")); v != "" {
		c.Portal.Email = v
	}
	if v := strings.TrimSpace(os.Getenv("VISA_PASSWORD")); v != "" {
		c.Portal.Password = v
	}
	if v := os.Getenv("PRODUCTION"); v != "" {
		c.Production = isTruthy(v)
	}
}

// isTruthy reports whether an environment value should be read as true.
func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "no":
		return false
	}
	return true
}

// Validate checks the configuration for fatal problems. Missing credentials
// fail here, before any navigation is attempted.
func (c *Config) Validate() error {
	if c.Portal.Email == "" || c.Portal.Password == "" {
		return ErrMissingCredentials
	}
	if c.Portal.LoginURL == "" {
		return fmt.Errorf("portal login_url is required")
	}
	if c.Portal.SchedulePattern == "" {
		return fmt.Errorf("portal schedule_pattern is required")
	}

	if _, _, err := c.ExclusionWindow(); err != nil {
		return err
	}
	if _, err := c.PacerDurations(); err != nil {
		return err
	}
	return nil
}

// PacerDurations returns the timing policy's durations with any configured
// overrides applied.
func (c *Config) PacerDurations() (pacing.Durations, error) {
	d := pacing.DefaultDurations()

	if c.Pacing.HibernateMin != "" {
		v, err := time.ParseDuration(c.Pacing.HibernateMin)
		if err != nil {
			return d, fmt.Errorf("invalid pacing hibernate_min %q: %w", c.Pacing.HibernateMin, err)
		}
		d.HibernateMin = v
	}
	if c.Pacing.HibernateMax != "" {
		v, err := time.ParseDuration(c.Pacing.HibernateMax)
		if err != nil {
			return d, fmt.Errorf("invalid pacing hibernate_max %q: %w", c.Pacing.HibernateMax, err)
		}
		d.HibernateMax = v
	}
	if d.HibernateMax < d.HibernateMin {
		return d, fmt.Errorf("pacing hibernate_max is below hibernate_min")
	}
	return d, nil
}

// ExclusionWindow parses the configured blackout interval. Both bounds zero
// means no window is configured.
func (c *Config) ExclusionWindow() (start, end time.Time, err error) {
	if c.Exclusion.Start == "" && c.Exclusion.End == "" {
		return time.Time{}, time.Time{}, nil
	}
	start, err = time.Parse(DateFormat, c.Exclusion.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid exclusion start date %q: %w", c.Exclusion.Start, err)
	}
	end, err = time.Parse(DateFormat, c.Exclusion.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid exclusion end date %q: %w", c.Exclusion.End, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("exclusion end %q is before start %q", c.Exclusion.End, c.Exclusion.Start)
	}
	return start, end, nil
}
