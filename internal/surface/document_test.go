package surface

import "testing"

func TestDocument_ComputedStyle(t *testing.T) {
	doc := NewDocument()
	doc.SetRule("grid-cell", "border-left-width", "2px")
	doc.SetRule("wide", "border-left-width", "4px")

	cell := doc.CreateElement("div")
	cell.SetAttribute("class", "grid-cell")
	cell.Style.SetBox(0, 30, 20, 40)

	cs := doc.ComputedStyle(cell)
	tests := []struct {
		prop string
		want string
	}{
		{"border-left-width", "2px"},
		{"top", "0px"},
		{"left", "30px"},
		{"height", "20px"},
		{"width", "40px"},
		{"position", "absolute"},
		{"box-sizing", "content-box"},
		{"pointer-events", "auto"},
		{"color", ""},
	}
	for _, tt := range tests {
		t.Run(tt.prop, func(t *testing.T) {
			if got := cs.PropertyValue(tt.prop); got != tt.want {
				t.Errorf("PropertyValue(%q) = %q, want %q", tt.prop, got, tt.want)
			}
		})
	}

	cell.SetAttribute("class", "grid-cell wide")
	if got := doc.ComputedStyle(cell).PropertyValue("border-left-width"); got != "4px" {
		t.Errorf("later class rule = %q, want 4px", got)
	}

	cell.SetStyleProperty("border-left-width", "1.5px")
	if got := doc.ComputedStyle(cell).PropertyValue("border-left-width"); got != "1.5px" {
		t.Errorf("inline property = %q, want 1.5px", got)
	}

	if got := doc.ComputedStyle(nil).PropertyValue("top"); got != "" {
		t.Errorf("nil element property = %q, want empty", got)
	}
}

func TestDocument_ElementAt(t *testing.T) {
	doc := NewDocument()
	container := doc.CreateElement("div")
	container.Style.SetBox(0, 0, 100, 100)
	doc.Body().AppendChild(container)

	cell := doc.CreateElement("div")
	cell.Style.SetBox(0, 0, 20, 50)
	container.AppendChild(cell)

	overlay := doc.CreateElement("div")
	overlay.Style.SetBox(0, 0, 100, 100)
	overlay.SetPointerEvents(PointerNone)
	container.AppendChild(overlay)

	decorator := doc.CreateElement("div")
	decorator.Style.SetBox(40, 40, 10, 10)
	overlay.AppendChild(decorator)

	if got := doc.ElementAt(10, 10); got != cell {
		t.Errorf("ElementAt(10,10) = %v, want cell through pointer-events none overlay", got)
	}
	if got := doc.ElementAt(45, 45); got != container {
		t.Errorf("ElementAt(45,45) = %v, want container while decorator inherits none", got)
	}

	decorator.SetPointerEvents(PointerAll)
	if got := doc.ElementAt(45, 45); got != decorator {
		t.Errorf("ElementAt(45,45) = %v, want decorator with pointer-events all", got)
	}

	decorator.Style.Hidden = true
	if got := doc.ElementAt(45, 45); got != container {
		t.Errorf("ElementAt(45,45) = %v, want container for hidden decorator", got)
	}

	if got := doc.ElementAt(500, 500); got != nil {
		t.Errorf("ElementAt outside = %v, want nil", got)
	}
}

func TestDocument_DispatchEvent(t *testing.T) {
	doc := NewDocument()

	var got *Event
	doc.AddEventListener("grid-draw", func(ev *Event) {
		got = ev
	})

	ev := NewEvent("grid-draw")
	doc.DispatchEvent(ev)

	if got != ev {
		t.Fatal("document listener not called")
	}
	if ev.Target != nil || ev.CurrentTarget != nil {
		t.Error("document events have no element target")
	}
	if ev.Dispatching() {
		t.Error("event still dispatching after return")
	}
}
