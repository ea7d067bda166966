package surface

// Document owns a visual tree and acts as its window-level event target.
type Document struct {
	eventTarget

	body  *Element
	rules map[string]map[string]string
}

// NewDocument creates an empty document with a body element.
func NewDocument() *Document {
	d := &Document{
		rules: make(map[string]map[string]string),
	}
	d.body = newElement(d, ElementNode, "body")
	return d
}

// Body returns the root element of the document.
func (d *Document) Body() *Element {
	return d.body
}

// CreateElement creates a detached element owned by the document.
func (d *Document) CreateElement(tag string) *Element {
	return newElement(d, ElementNode, tag)
}

// CreateText creates a detached text node.
func (d *Document) CreateText(text string) *Element {
	n := newElement(d, TextNode, "#text")
	n.text = text
	return n
}

// SetRule sets a stylesheet property for every element carrying class.
func (d *Document) SetRule(class, property, value string) {
	r, ok := d.rules[class]
	if !ok {
		r = make(map[string]string)
		d.rules[class] = r
	}
	r[property] = value
}

// ComputedStyle resolves the style of el. Rules are applied in class order
// and inline properties win over rules.
func (d *Document) ComputedStyle(el *Element) ComputedStyle {
	props := make(map[string]string)
	if el != nil {
		for _, c := range el.classes {
			for k, v := range d.rules[c] {
				props[k] = v
			}
		}
		for k, v := range el.props {
			props[k] = v
		}
	}
	return ComputedStyle{el: el, props: props}
}

// QuerySelector searches the body subtree.
func (d *Document) QuerySelector(selector string) *Element {
	return d.body.QuerySelector(selector)
}

// DispatchEvent dispatches ev on the document only.
func (d *Document) DispatchEvent(ev *Event) {
	ev.beginDispatch()
	defer ev.endDispatch()

	if ev.dispatching == 1 {
		ev.Target = nil
		ev.stopped = false
	}
	ev.CurrentTarget = nil
	d.invoke(ev)
}

// ElementAt returns the deepest connected element under (x, y) that accepts
// pointer input, or nil. Later siblings are on top of earlier ones.
func (d *Document) ElementAt(x, y float64) *Element {
	return hitTest(d.body, x, y, PointerAll)
}

func hitTest(e *Element, x, y float64, inherited PointerEvents) *Element {
	if e.kind == TextNode || e.Style.Hidden {
		return nil
	}
	effective := e.Style.PointerEvents
	if effective == PointerAuto {
		effective = inherited
	}
	for i := len(e.children) - 1; i >= 0; i-- {
		if hit := hitTest(e.children[i], x, y, effective); hit != nil {
			return hit
		}
	}
	if effective == PointerNone {
		return nil
	}
	if b := e.Bounds(); !b.Empty() && b.Contains(x, y) {
		return e
	}
	return nil
}
