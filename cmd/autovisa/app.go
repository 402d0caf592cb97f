package main

import (
	"fmt"

	"github.com/thiagorcdl/autovisa/pkg/browser"
	"github.com/thiagorcdl/autovisa/pkg/config"
	"github.com/thiagorcdl/autovisa/pkg/logging"
	"github.com/thiagorcdl/autovisa/pkg/notify"
	"github.com/thiagorcdl/autovisa/pkg/pacing"
	"github.com/thiagorcdl/autovisa/pkg/schedule"
)

// app wires the configuration, browser runtime, pacing policy, and notifier
// behind a single RunOnce the supervisor can drive. Every attempt gets its
// own browser session so a crashed or poisoned session never leaks into the
// next attempt.
type app struct {
	cfg      config.Config
	log      *logging.Logger
	manager  *browser.Manager
	pacer    *pacing.RandomPacer
	notifier notify.Notifier
	headless bool

	engineOpts schedule.Options
}

func newApp(flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	log, err := logging.NewLogger("main")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	log.Infof("Log file: %s", log.LogPath())

	opts, err := engineOptions(cfg)
	if err != nil {
		log.Close()
		return nil, err
	}

	notifier, err := notify.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.ChatID, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	durations, err := cfg.PacerDurations()
	if err != nil {
		log.Close()
		return nil, err
	}

	manager := browser.NewManager()
	if err := manager.Initialize(); err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to initialize browser runtime: %w", err)
	}

	return &app{
		cfg:        cfg,
		log:        log,
		manager:    manager,
		pacer:      pacing.NewRandomPacer(durations),
		notifier:   notifier,
		headless:   flags.headless,
		engineOpts: opts,
	}, nil
}

// engineOptions maps the validated config onto the engine's options.
func engineOptions(cfg config.Config) (schedule.Options, error) {
	allowed, err := schedule.NewAllowedLocations(cfg.Locations.Allowed)
	if err != nil {
		return schedule.Options{}, err
	}

	start, end, err := cfg.ExclusionWindow()
	if err != nil {
		return schedule.Options{}, err
	}

	return schedule.Options{
		LoginURL:        cfg.Portal.LoginURL,
		SchedulePattern: cfg.Portal.SchedulePattern,
		Email:           cfg.Portal.Email,
		Password:        cfg.Portal.Password,
		ApplicantInfo:   cfg.Applicant.Info,
		Allowed:         allowed,
		Window:          schedule.ExclusionWindow{Start: start, End: end},
		Production:      cfg.Production,
	}, nil
}

// RunOnce performs one full reschedule attempt in a fresh browser session.
func (a *app) RunOnce() (*schedule.Result, error) {
	session, err := a.manager.NewSession(browser.SessionOptions{
		Headless: a.headless,
		Pacer:    a.pacer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open browser session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			a.log.Warnf("Failed to close browser session: %v", cerr)
		}
	}()

	engine := schedule.NewEngine(session, a.pacer, a.log, a.engineOpts)
	return engine.Run()
}

func (a *app) Close() {
	if err := a.manager.Shutdown(); err != nil {
		a.log.Warnf("Browser runtime shutdown: %v", err)
	}
	a.log.Close()
}
