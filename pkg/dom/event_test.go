package dom

import "testing"

func TestEventBubbling(t *testing.T) {
	doc := NewDocument()
	outer := doc.CreateElement("div")
	inner := doc.CreateElement("button")
	outer.AppendChild(inner)

	var order []string
	outer.AddEventListener("click", func(e *Event) {
		order = append(order, "outer")
		if e.Target != inner || e.CurrentTarget != outer {
			t.Error("unexpected targets on outer")
		}
	})
	inner.AddEventListener("click", func(*Event) { order = append(order, "inner") })

	inner.DispatchEvent(NewEvent("click"))
	if len(order) != 2 || order[0] != "inner" || order[1] != "outer" {
		t.Errorf("order = %v", order)
	}
}

func TestEventStopAndRemove(t *testing.T) {
	doc := NewDocument()
	outer := doc.CreateElement("div")
	inner := doc.CreateElement("span")
	outer.AppendChild(inner)

	outerCalls := 0
	outer.AddEventListener("x", func(*Event) { outerCalls++ })
	remove := inner.AddEventListener("x", func(e *Event) {
		e.StopPropagation()
		e.PreventDefault()
	})

	if inner.DispatchEvent(NewEvent("x")) {
		t.Error("DispatchEvent should report prevented default")
	}
	if outerCalls != 0 {
		t.Error("propagation should stop")
	}

	remove()
	inner.DispatchEvent(NewEvent("x"))
	if outerCalls != 1 {
		t.Errorf("expected outer to be reached after removal, got %d", outerCalls)
	}
}

func TestEventCrossesShadowRoot(t *testing.T) {
	doc := NewDocument()
	host := doc.CreateElement("x-card")
	root := host.AttachShadow()
	btn := doc.CreateElement("button")
	root.AppendChild(btn)

	var detail any
	host.AddEventListener("pick", func(e *Event) { detail = e.Detail })
	btn.DispatchEvent(NewCustomEvent("pick", 42))

	if detail != 42 {
		t.Errorf("detail = %v", detail)
	}
}
