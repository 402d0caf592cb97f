package browser

import (
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Manager owns the Playwright runtime and the single browser session the
// scheduling engine drives. The session is exclusively owned by one engine
// run; no concurrent sessions are ever created.
type Manager struct {
	playwright  *playwright.Playwright
	initialized bool
}

// NewManager creates an uninitialized manager.
func NewManager() *Manager {
	return &Manager{}
}

// Initialize installs and starts the Playwright runtime. This must be called
// before creating a session.
func (m *Manager) Initialize() error {
	if m.initialized {
		return nil
	}

	// Install and run Playwright quietly; driver chatter on stdout would
	// interleave with our own logs.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// NewSession launches a browser and returns the live session. Captured
// network exchanges start accumulating immediately.
func (m *Manager) NewSession(opts SessionOptions) (*Session, error) {
	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized")
	}
	if opts.Pacer == nil {
		return nil, fmt.Errorf("session options require a pacer")
	}

	// Set defaults
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	}
	browser, err := m.playwright.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		UserAgent: &opts.UserAgent,
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
		IgnoreHttpsErrors: playwright.Bool(true),
	}
	context, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(opts.Timeout)

	session := &Session{
		browser:   browser,
		context:   context,
		page:      page,
		pacer:     opts.Pacer,
		CreatedAt: time.Now(),
	}
	session.attachInterception()

	return session, nil
}

// attachInterception records every response the page receives into the
// session's exchange buffer. The buffer is shared across the whole session;
// callers clear it before each probe so a stale exchange is never attributed
// to the wrong location.
func (s *Session) attachInterception() {
	s.page.OnResponse(func(resp playwright.Response) {
		body, err := resp.Body()
		if err != nil {
			body = nil
		}

		path := resp.URL()
		if parsed, err := url.Parse(resp.URL()); err == nil {
			path = parsed.Path
		}

		s.mu.Lock()
		s.exchanges = append(s.exchanges, Exchange{
			Path:    path,
			URL:     resp.URL(),
			Body:    body,
			Headers: resp.Headers(),
		})
		s.mu.Unlock()
	})
}

// Close closes the session's browser resources.
func (s *Session) Close() error {
	// Ignore per-resource errors, continue cleanup
	_ = s.page.Close()
	_ = s.context.Close()
	if err := s.browser.Close(); err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// Shutdown stops the Playwright runtime.
func (m *Manager) Shutdown() error {
	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}
	return nil
}
