package browser

import "fmt"

// SelectorKind tags the lookup strategy of a Selector.
type SelectorKind int

const (
	// ByID matches on the element id attribute
	ByID SelectorKind = iota

	// ByCSS matches a CSS selector
	ByCSS

	// ByXPath matches an XPath expression
	ByXPath

	// ByName matches on the name attribute
	ByName

	// ByClass matches on a single class name
	ByClass
)

// Selector is a tagged lookup strategy for one element. Fallback behavior is
// expressed by passing several selectors to FindAny, which tries them in
// order and short-circuits on the first match.
type Selector struct {
	Kind  SelectorKind
	Value string
}

// ID selects by element id.
func ID(value string) Selector { return Selector{Kind: ByID, Value: value} }

// CSS selects by CSS selector.
func CSS(value string) Selector { return Selector{Kind: ByCSS, Value: value} }

// XPath selects by XPath expression.
func XPath(value string) Selector { return Selector{Kind: ByXPath, Value: value} }

// Name selects by name attribute.
func Name(value string) Selector { return Selector{Kind: ByName, Value: value} }

// Class selects by class name.
func Class(value string) Selector { return Selector{Kind: ByClass, Value: value} }

// query translates the selector into Playwright's selector syntax.
func (s Selector) query() string {
	switch s.Kind {
	case ByID:
		return fmt.Sprintf(`[id=%q]`, s.Value)
	case ByName:
		return fmt.Sprintf(`[name=%q]`, s.Value)
	case ByClass:
		return "." + s.Value
	case ByXPath:
		return "xpath=" + s.Value
	default:
		return s.Value
	}
}

// String returns a readable form for log messages.
func (s Selector) String() string {
	switch s.Kind {
	case ByID:
		return "id=" + s.Value
	case ByName:
		return "name=" + s.Value
	case ByClass:
		return "class=" + s.Value
	case ByXPath:
		return "xpath=" + s.Value
	default:
		return "css=" + s.Value
	}
}

// Fallbacks expands a bare key into the ordered lookup chain used for portal
// elements whose markup shifts between revisions: id first, then css, then
// name, then class.
func Fallbacks(key string) []Selector {
	return []Selector{ID(key), CSS(key), Name(key), Class(key)}
}
