package manifest

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/lumen/internal/errors"
	"github.com/vango-dev/lumen/pkg/dom"
	"github.com/vango-dev/lumen/pkg/element"
	"github.com/vango-dev/lumen/pkg/reactive"
)

const shop = `
root: app-root
services:
  - name: store
    state: { total: 0 }
pipes:
  - name: shout
    expr: "$value | uppercase"
directives:
  - name: tint
    selector: "[appTint]"
    inputs: [tint]
    host:
      "[style.color]": tint
    state: { tint: black }
components:
  - selector: app-root
    template: >-
      <h1 appTint tint="red">{{ title | shout }}</h1><button (click)="bump(2)">+</button><p>{{ count }}/{{ store.total }}</p><app-badge [label]="title"></app-badge>
    imports: [app-badge, tint, shout]
    inject: [store]
    state: { title: hi, count: 0 }
    methods:
      bump: "count = count + $args[0]; store.total = store.total + 1"
  - selector: app-badge
    template: "<span>{{ label }}:{{ store.total }}</span>"
    inputs: [label]
    inject: [store]
    state: { label: "" }
`

func mountShop(t *testing.T) (*reactive.Runtime, *element.Application, *dom.Node) {
	t.Helper()
	m, err := Parse([]byte(shop))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rt := reactive.New()
	b, err := m.Build(rt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	doc := dom.NewDocument()
	app := element.NewApplication(doc, b.Injector, element.WithRuntime(rt), element.WithIDPool(element.NewIDPool()))
	if err := app.Bootstrap(b.Definitions()...); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	el, err := app.Mount(b.Root, doc.Body())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	rt.Flush()
	return rt, app, el
}

func TestBuiltManifestRenders(t *testing.T) {
	rt, app, el := mountShop(t)
	kids := el.Children()
	if len(kids) != 4 {
		t.Fatalf("root children = %d: %s", len(kids), dom.InnerHTML(el))
	}
	h1, button, p, badge := kids[0], kids[1], kids[2], kids[3]

	got := []string{h1.TextContent(), p.TextContent(), badge.TextContent(), h1.Style().GetPropertyValue("color")}
	if diff := cmp.Diff([]string{"HI", "0/0", "hi:0", "red"}, got); diff != "" {
		t.Errorf("initial render mismatch (-want +got):\n%s", diff)
	}

	button.DispatchEvent(dom.NewEvent("click"))
	rt.Flush()
	got = []string{p.TextContent(), badge.TextContent()}
	if diff := cmp.Diff([]string{"2/1", "hi:1"}, got); diff != "" {
		t.Errorf("after click mismatch (-want +got):\n%s", diff)
	}

	h, _ := app.HostOf(el)
	state := h.Instance().(*State)
	if state.Snapshot()["count"] != 2.0 {
		t.Errorf("count = %v, want 2", state.Snapshot()["count"])
	}
	state.Assign("title", "yo")
	if h1.TextContent() != "YO" || badge.TextContent() != "yo:1" {
		t.Errorf("after assign: %q %q", h1.TextContent(), badge.TextContent())
	}
}

func TestStateMethodsAndOutputs(t *testing.T) {
	rt := reactive.New()
	s, err := newState(rt, "x", map[string]any{"n": 1.0}, map[string]string{"add": "n = n + $args[0]"}, nil, nil, []string{"changed"})
	if err != nil {
		t.Fatal(err)
	}
	fn, ok := s.Lookup("add")
	if !ok {
		t.Fatal("method missing")
	}
	if _, err := fn.(method).Call(4.0); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Lookup("n"); got != 5.0 {
		t.Errorf("n = %v, want 5", got)
	}
	if s.Assign("add", 1) || s.Assign("changed", 1) {
		t.Error("methods and outputs must be read-only")
	}
	if s.Output("changed") != s.Output("changed") {
		t.Error("Output created twice")
	}
	if !s.Assign("fresh", "v") {
		t.Error("new field rejected")
	}
	if diff := cmp.Diff([]string{"fresh", "n"}, s.Fields()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestInstancesDoNotShareDecodedValues(t *testing.T) {
	fields := map[string]any{"list": []any{"a"}}
	rt := reactive.New()
	a := NewState(rt, "a", copyFields(fields))
	b := NewState(rt, "b", copyFields(fields))
	la, _ := a.Lookup("list")
	la.([]any)[0] = "changed"
	lb, _ := b.Lookup("list")
	if lb.([]any)[0] != "a" {
		t.Errorf("instances share slices")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"duplicate", "components: [{selector: x-a}]\npipes: [{name: x-a, expr: '$value'}]", "L002"},
		{"unknown import", "components: [{selector: x-a, imports: [nope]}]", "L003"},
		{"inject non-service", "components: [{selector: x-a, inject: [x-a]}]", "L003"},
		{"bad root", "root: x-b\ncomponents: [{selector: x-a}]", "L003"},
		{"directive selector", "directives: [{name: d}]", "L002"},
		{"unknown field", "components: [{selector: x-a, colour: red}]", "L002"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Code != tt.code {
				t.Errorf("Parse error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildRejectsBadExpressions(t *testing.T) {
	m, err := Parse([]byte("components: [{selector: x-a, methods: {go: 'a +'}}]"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Build(reactive.New()); err == nil {
		t.Error("Build accepted a malformed method")
	}
	m, err = Parse([]byte("components: [{selector: x-a, encapsulation: sideways}]"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Build(reactive.New()); err == nil {
		t.Error("Build accepted an unknown encapsulation")
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	body := `{"root":"x-a","components":[{"selector":"x-a","template":"<i></i>","encapsulation":"shadow"}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, err := m.Build(reactive.New())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	def, ok := b.Component("x-a")
	if !ok || def.Encapsulation.String() != "shadow" || b.Root != "x-a" {
		t.Errorf("def = %+v root = %q", def, b.Root)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "L001" {
		t.Errorf("missing file error = %v", err)
	}
}
