package browser

import (
	"errors"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrElementNotFound indicates that no selector in a lookup chain matched.
var ErrElementNotFound = errors.New("element not found")

// Driver is the primitive surface the scheduling engine consumes. The engine
// never issues raw HTTP or touches page structure directly; everything goes
// through these calls, so tests can substitute an in-memory fake.
type Driver interface {
	// Navigate loads a URL and waits for the page to settle.
	Navigate(url string) error

	// Refresh reloads the current page.
	Refresh() error

	// CurrentURL returns the URL of the current page.
	CurrentURL() string

	// Find returns the first element matching the selector, or
	// ErrElementNotFound.
	Find(sel Selector) (Element, error)

	// FindAny tries selectors in order and returns the first match, or
	// ErrElementNotFound when none matches.
	FindAny(sels ...Selector) (Element, error)

	// FindAll returns every element matching the selector.
	FindAll(sel Selector) ([]Element, error)

	// TypeSlowly sends text to an element one character at a time with a
	// short jitter between keystrokes.
	TypeSlowly(el Element, text string) error

	// SelectByValue picks a <select> option by its value attribute.
	SelectByValue(sel Selector, value string) error

	// SelectOptions lists the options of a <select> element in DOM order.
	SelectOptions(sel Selector) ([]SelectOption, error)

	// SendEscape sends the Escape key to the matched element.
	SendEscape(sel Selector) error

	// ClearExchanges drops every captured network exchange.
	ClearExchanges()

	// Exchanges returns the network exchanges captured since the last
	// ClearExchanges, in arrival order.
	Exchanges() []Exchange
}

// Element is a handle to a single page element.
type Element interface {
	// Click clicks the element.
	Click() error

	// Text returns the element's visible text content.
	Text() (string, error)

	// Attribute returns the named attribute, empty when absent.
	Attribute(name string) (string, error)

	// Find returns the first descendant matching the selector, or
	// ErrElementNotFound.
	Find(sel Selector) (Element, error)
}

// SelectOption is one entry of a <select> control.
type SelectOption struct {
	Value string
	Label string
}

// Exchange is one passively captured network response.
type Exchange struct {
	// Path is the URL path component, e.g. "/appointment/days/94.json"
	Path string

	// URL is the full request URL
	URL string

	// Body is the decoded response body, nil when it could not be read
	Body []byte

	// Headers are the response headers
	Headers map[string]string
}

// Session represents the one live browser context the engine owns.
type Session struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	pacer keystrokePacer

	mu        sync.Mutex
	exchanges []Exchange

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time
}

// keystrokePacer is the slice of the pacing policy the adapter itself needs:
// the per-keystroke jitter of TypeSlowly. Everything else is paced by callers.
type keystrokePacer interface {
	Quick()
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// UserAgent overrides the browser user agent when non-empty
	UserAgent string

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for operations (in milliseconds)
	Timeout float64

	// Pacer supplies the keystroke jitter for TypeSlowly. Required.
	Pacer keystrokePacer
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for various operations
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	// DefaultUserAgent is presented to the portal instead of the headless
	// browser's own string.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/104.0.5112.102 Safari/537.36"
)
