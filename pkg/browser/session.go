package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// element wraps a Playwright handle behind the Element interface.
type element struct {
	handle playwright.ElementHandle
}

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateLoad})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Refresh reloads the current page.
func (s *Session) Refresh() error {
	_, err := s.page.Reload(playwright.PageReloadOptions{WaitUntil: playwright.WaitUntilStateLoad})
	if err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return nil
}

// CurrentURL returns the URL of the current page.
func (s *Session) CurrentURL() string {
	return s.page.URL()
}

// Find returns the first element matching the selector.
func (s *Session) Find(sel Selector) (Element, error) {
	handle, err := s.page.QuerySelector(sel.query())
	if err != nil || handle == nil {
		return nil, ErrElementNotFound
	}
	return &element{handle: handle}, nil
}

// FindAny tries selectors in order and returns the first match. A selector
// that fails to parse is treated as a non-match and the chain continues.
func (s *Session) FindAny(sels ...Selector) (Element, error) {
	for _, sel := range sels {
		if el, err := s.Find(sel); err == nil {
			return el, nil
		}
	}
	return nil, ErrElementNotFound
}

// FindAll returns every element matching the selector.
func (s *Session) FindAll(sel Selector) ([]Element, error) {
	handles, err := s.page.QuerySelectorAll(sel.query())
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}

	elements := make([]Element, 0, len(handles))
	for _, handle := range handles {
		elements = append(elements, &element{handle: handle})
	}
	return elements, nil
}

// TypeSlowly sends text to an element one character at a time, pausing
// briefly between keystrokes.
func (s *Session) TypeSlowly(el Element, text string) error {
	target, ok := el.(*element)
	if !ok {
		return fmt.Errorf("element does not belong to this session")
	}

	for _, ch := range text {
		s.pacer.Quick()
		if err := target.handle.Type(string(ch)); err != nil {
			return fmt.Errorf("typing failed: %w", err)
		}
	}
	return nil
}

// SelectByValue picks a <select> option by its value attribute.
func (s *Session) SelectByValue(sel Selector, value string) error {
	values := playwright.SelectOptionValues{Values: &[]string{value}}
	if _, err := s.page.SelectOption(sel.query(), values); err != nil {
		return fmt.Errorf("select failed: %w", err)
	}
	return nil
}

// SelectOptions lists the options of a <select> element in DOM order.
func (s *Session) SelectOptions(sel Selector) ([]SelectOption, error) {
	control, err := s.Find(sel)
	if err != nil {
		return nil, err
	}

	target := control.(*element)
	handles, err := target.handle.QuerySelectorAll("option")
	if err != nil {
		return nil, fmt.Errorf("option query failed: %w", err)
	}

	options := make([]SelectOption, 0, len(handles))
	for _, handle := range handles {
		value, err := handle.GetAttribute("value")
		if err != nil {
			value = ""
		}
		label, err := handle.TextContent()
		if err != nil {
			label = ""
		}
		options = append(options, SelectOption{Value: value, Label: label})
	}
	return options, nil
}

// SendEscape sends the Escape key to the matched element.
func (s *Session) SendEscape(sel Selector) error {
	el, err := s.Find(sel)
	if err != nil {
		return err
	}
	if err := el.(*element).handle.Press("Escape"); err != nil {
		return fmt.Errorf("escape failed: %w", err)
	}
	return nil
}

// ClearExchanges drops every captured network exchange.
func (s *Session) ClearExchanges() {
	s.mu.Lock()
	s.exchanges = nil
	s.mu.Unlock()
}

// Exchanges returns the captured exchanges in arrival order.
func (s *Session) Exchanges() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Exchange, len(s.exchanges))
	copy(out, s.exchanges)
	return out
}

// Click clicks the element.
func (e *element) Click() error {
	if err := e.handle.Click(); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// Text returns the element's visible text content.
func (e *element) Text() (string, error) {
	text, err := e.handle.TextContent()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return text, nil
}

// Attribute returns the named attribute, empty when absent.
func (e *element) Attribute(name string) (string, error) {
	value, err := e.handle.GetAttribute(name)
	if err != nil {
		return "", fmt.Errorf("attribute lookup failed: %w", err)
	}
	return value, nil
}

// Find returns the first descendant matching the selector.
func (e *element) Find(sel Selector) (Element, error) {
	handle, err := e.handle.QuerySelector(sel.query())
	if err != nil || handle == nil {
		return nil, ErrElementNotFound
	}
	return &element{handle: handle}, nil
}
