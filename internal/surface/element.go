package surface

import (
	"errors"
	"strings"
)

// ErrNotChild is returned when removing a node that is not a child.
var ErrNotChild = errors.New("node is not a child of this element")

// NodeKind distinguishes elements from text nodes.
type NodeKind uint8

const (
	// ElementNode is a container with attributes, style and children.
	ElementNode NodeKind = iota

	// TextNode holds text content and has no children.
	TextNode
)

// Element is a node in the visual tree.
type Element struct {
	eventTarget

	kind     NodeKind
	tag      string
	text     string
	attrs    map[string]string
	classes  []string
	props    map[string]string
	parent   *Element
	children []*Element
	doc      *Document

	// Style is the inline style of the element.
	Style Style
}

func newElement(doc *Document, kind NodeKind, tag string) *Element {
	return &Element{
		kind: kind,
		tag:  tag,
		doc:  doc,
	}
}

// Kind returns whether this is an element or a text node.
func (e *Element) Kind() NodeKind {
	return e.kind
}

// Tag returns the element tag. Text nodes return "#text".
func (e *Element) Tag() string {
	return e.tag
}

// IsText returns true for text nodes.
func (e *Element) IsText() bool {
	return e.kind == TextNode
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// Text returns the content of a text node.
func (e *Element) Text() string {
	return e.text
}

// SetText replaces the content of a text node.
func (e *Element) SetText(text string) {
	e.text = text
}

// TextContent returns the concatenated text of the subtree.
func (e *Element) TextContent() string {
	if e.kind == TextNode {
		return e.text
	}
	var sb strings.Builder
	for _, c := range e.children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// SetAttribute sets an attribute. The "class" attribute replaces the
// element's class list with the space-separated classes in value.
func (e *Element) SetAttribute(name, value string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
	if name == "class" {
		e.classes = strings.Fields(value)
	}
}

// Attribute returns an attribute value.
func (e *Element) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// HasClass returns true if the element carries the class.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.classes {
		if c == class {
			return true
		}
	}
	return false
}

// Classes returns a copy of the class list.
func (e *Element) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// SetStyleProperty sets an inline string-valued style property that is
// reported by ComputedStyle ahead of stylesheet rules.
func (e *Element) SetStyleProperty(name, value string) {
	if e.props == nil {
		e.props = make(map[string]string)
	}
	e.props[name] = value
}

// SetPointerEvents sets the pointer-events style of the element.
func (e *Element) SetPointerEvents(pe PointerEvents) {
	e.Style.PointerEvents = pe
}

// PointerEvents returns the element's own pointer-events value.
func (e *Element) PointerEvents() PointerEvents {
	return e.Style.PointerEvents
}

// Parent returns the parent element or nil.
func (e *Element) Parent() *Element {
	return e.parent
}

// FirstChild returns the first child or nil.
func (e *Element) FirstChild() *Element {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// ChildCount returns the number of children.
func (e *Element) ChildCount() int {
	return len(e.children)
}

// AppendChild appends child, detaching it from any previous parent.
// Appending to a text node is a no-op.
func (e *Element) AppendChild(child *Element) {
	if child == nil || e.kind == TextNode || child == e {
		return
	}
	if child.parent != nil {
		_ = child.parent.RemoveChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
}

// RemoveChild detaches child from this element.
func (e *Element) RemoveChild(child *Element) error {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			return nil
		}
	}
	return ErrNotChild
}

// RemoveChildren detaches every child.
func (e *Element) RemoveChildren() {
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
}

// Contains returns true if other is e or a descendant of e.
func (e *Element) Contains(other *Element) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// IsConnected returns true if the element is attached to its document body.
func (e *Element) IsConnected() bool {
	if e.doc == nil {
		return false
	}
	return e.doc.body.Contains(e)
}

// DispatchEvent dispatches ev at this element. Bubbling events then visit
// each ancestor and, for connected elements, the owning document.
func (e *Element) DispatchEvent(ev *Event) {
	ev.beginDispatch()
	defer ev.endDispatch()

	if ev.dispatching == 1 {
		ev.Target = e
		ev.stopped = false
	}

	for n := e; n != nil; n = n.parent {
		ev.CurrentTarget = n
		n.invoke(ev)
		if !ev.Bubbles || ev.stopped {
			ev.CurrentTarget = nil
			return
		}
	}
	ev.CurrentTarget = nil

	if e.IsConnected() {
		e.doc.invoke(ev)
	}
}

// QuerySelector returns the first descendant matching selector.
// Supported selectors: "tag", ".class" and "[attr=value]".
func (e *Element) QuerySelector(selector string) *Element {
	m := parseSelector(selector)
	var found *Element
	e.walk(func(n *Element) bool {
		if n != e && m.matches(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// QuerySelectorAll returns every descendant matching selector in tree order.
func (e *Element) QuerySelectorAll(selector string) []*Element {
	m := parseSelector(selector)
	var out []*Element
	e.walk(func(n *Element) bool {
		if n != e && m.matches(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// walk visits the subtree in pre-order until fn returns false.
func (e *Element) walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

type selector struct {
	tag   string
	class string
	attr  string
	value string
}

func parseSelector(s string) selector {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "."):
		return selector{class: s[1:]}
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		body := s[1 : len(s)-1]
		name, value, _ := strings.Cut(body, "=")
		return selector{attr: name, value: strings.Trim(value, `'"`)}
	default:
		return selector{tag: s}
	}
}

func (s selector) matches(e *Element) bool {
	if e.kind == TextNode {
		return false
	}
	switch {
	case s.class != "":
		return e.HasClass(s.class)
	case s.attr != "":
		v, ok := e.attrs[s.attr]
		return ok && (s.value == "" || v == s.value)
	default:
		return s.tag != "" && e.tag == s.tag
	}
}
