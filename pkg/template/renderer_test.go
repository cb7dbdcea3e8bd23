package template

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/lumen/pkg/binding"
	"github.com/vango-dev/lumen/pkg/dom"
	"github.com/vango-dev/lumen/pkg/reactive"
)

type fixture struct {
	rt  *reactive.Runtime
	doc *dom.Document
	reg *binding.Registry
	r   *Renderer
}

func newFixture() *fixture {
	rt := reactive.New()
	doc := dom.NewDocument()
	reg := binding.NewRegistry(rt)
	return &fixture{rt: rt, doc: doc, reg: reg, r: New(doc, binding.NewBinder(reg))}
}

func (f *fixture) render(t *testing.T, src string, instance any) *dom.Node {
	t.Helper()
	target := f.doc.CreateElement("div")
	f.doc.Body().AppendChild(target)
	if err := f.r.Render(target, src, binding.Root(instance), Options{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return target
}

func tags(root *dom.Node, tag string) []*dom.Node {
	var out []*dom.Node
	for _, n := range root.Descendants() {
		if n.Type == dom.ElementNode && n.Tag == tag {
			out = append(out, n)
		}
	}
	return out
}

func texts(nodes []*dom.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.TextContent()
	}
	return out
}

func TestNgForLiteralArray(t *testing.T) {
	f := newFixture()
	target := f.render(t, `<ul><li *ngFor="let x of [1,2,3]">{{ x }}</li></ul>`, nil)

	if diff := cmp.Diff([]string{"1", "2", "3"}, texts(tags(target, "li"))); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestNgForResetToEmptyLeavesMarkers(t *testing.T) {
	f := newFixture()
	items := reactive.NewSignal[[]any](f.rt, []any{1, 2, 3})
	target := f.render(t, `<ul><li *ngFor="let x of items()">{{ x }}</li></ul>`, map[string]any{"items": items})

	if n := len(tags(target, "li")); n != 3 {
		t.Fatalf("rendered %d items, want 3", n)
	}
	items.Set([]any{})

	ul := target.FirstChild()
	var kinds []string
	for _, c := range ul.ChildNodes() {
		kinds = append(kinds, c.Type.String()+":"+c.Data)
	}
	want := []string{"Comment:ngFor: let x of items()", "Comment:/ngFor"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestNgForRebuildDestroysRemovedEffects(t *testing.T) {
	f := newFixture()
	items := reactive.NewSignal[[]any](f.rt, []any{"a", "b"})
	f.render(t, `<p *ngFor="let x of items()" [attr.title]="x"></p>`, map[string]any{"items": items})

	before := f.rt.ActiveEffects()
	items.Set([]any{"c"})
	if got, want := f.rt.ActiveEffects(), before-1; got != want {
		t.Errorf("ActiveEffects = %d, want %d", got, want)
	}
	items.Set(nil)
	if got, want := f.reg.EffectCount(), 1; got != want {
		t.Errorf("EffectCount = %d, want only the repeater effect", got)
	}
}

func TestNestedNgFor(t *testing.T) {
	f := newFixture()
	line := func(names ...string) map[string]any {
		var items []any
		for _, n := range names {
			items = append(items, map[string]any{"name": n})
		}
		return map[string]any{"items": items}
	}
	lines := reactive.NewSignal[[]any](f.rt, []any{line("a")})
	target := f.render(t,
		`<div *ngFor="let line of lines()"><span *ngFor="let item of line.items">{{ item.name }}</span></div>`,
		map[string]any{"lines": lines})

	if diff := cmp.Diff([]string{"a"}, texts(tags(target, "span"))); diff != "" {
		t.Errorf("inner clones mismatch (-want +got):\n%s", diff)
	}

	lines.Set([]any{line("b", "c"), line("d")})
	if diff := cmp.Diff([]string{"b", "c", "d"}, texts(tags(target, "span"))); diff != "" {
		t.Errorf("inner clones mismatch (-want +got):\n%s", diff)
	}
}

func TestNgForLocals(t *testing.T) {
	f := newFixture()
	target := f.render(t,
		`<i *ngFor="let x of ['a','b','c']; let i = index; let l = last; odd as o">{{ i }}{{ x }}{{ l ? '!' : '' }}{{ o ? 'o' : '' }}</i>`, nil)

	if diff := cmp.Diff([]string{"0a", "1bo", "2c!"}, texts(tags(target, "i"))); diff != "" {
		t.Errorf("locals mismatch (-want +got):\n%s", diff)
	}
}

func TestNgForInWalksSortedKeys(t *testing.T) {
	f := newFixture()
	target := f.render(t, `<b *ngFor="let k in obj">{{ k }}={{ obj[k] }}</b>`,
		map[string]any{"obj": map[string]any{"z": 1, "a": 2}})

	if diff := cmp.Diff([]string{"a=2", "z=1"}, texts(tags(target, "b"))); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestNgIf(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"false", `<p *ngIf="false">x</p>`, `<!--ngIf: false--><!--/ngIf-->`},
		{"true", `<p *ngIf="1 == 1">x</p>`, `<!--ngIf: 1 == 1--><p>x</p><!--/ngIf-->`},
		{"let alias", `<p *ngIf="user; let u">{{ u.name }}</p>`, `<!--ngIf: user; let u--><p>Ada</p><!--/ngIf-->`},
		{"as alias", `<ng-container *ngIf="user as u"><b>{{ u.name }}</b><i>{{ u.name }}</i></ng-container>`,
			`<!--ngIf: user as u--><b>Ada</b><i>Ada</i><!--/ngIf-->`},
		{"malformed", `<p *ngIf="">x</p>`, `<!--ngIf: --><!--/ngIf-->`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			target := f.render(t, tt.src, map[string]any{"user": map[string]any{"name": "Ada"}})
			if got := dom.InnerHTML(target); got != tt.want {
				t.Errorf("got %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestNgIfTrackedByEnclosingEffect(t *testing.T) {
	f := newFixture()
	show := reactive.NewSignal(f.rt, false)
	target := f.doc.CreateElement("div")
	f.doc.Body().AppendChild(target)

	reactive.NewEffect(f.rt, func() {
		_ = f.r.Render(target, `<p *ngIf="show()">on</p>`, binding.Root(map[string]any{"show": show}), Options{})
	})
	if len(tags(target, "p")) != 0 {
		t.Fatal("expected no content")
	}
	show.Set(true)
	if len(tags(target, "p")) != 1 {
		t.Error("expected the enclosing effect to re-render the condition")
	}
}

func TestMalformedNgForIsInert(t *testing.T) {
	f := newFixture()
	target := f.render(t, `<li *ngFor="x in">a</li>`, nil)
	if got, want := dom.InnerHTML(target), `<!--ngFor: x in--><!--/ngFor-->`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestSelectSafeCommentMarkers(t *testing.T) {
	f := newFixture()
	opts := reactive.NewSignal[[]any](f.rt, []any{"red", "green"})
	target := f.render(t,
		`<select><!--F:opt:opts()--><option [attr.value]="opt">{{ opt }}</option><!--/F--></select>`,
		map[string]any{"opts": opts})

	options := tags(target, "option")
	if diff := cmp.Diff([]string{"red", "green"}, texts(options)); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if v, _ := options[1].GetAttribute("value"); v != "green" {
		t.Errorf("value = %q, want green", v)
	}

	opts.Set([]any{"blue"})
	if diff := cmp.Diff([]string{"blue"}, texts(tags(target, "option"))); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestContentAttrAndRename(t *testing.T) {
	f := newFixture()
	target := f.doc.CreateElement("div")
	err := f.r.Render(target, `<p _ngcontent-c1><b *ngFor="let x of [1]"></b></p>`, binding.Root(nil), Options{
		ContentAttr: "_ngcontent-c1-2",
		Rename:      map[string]string{"_ngcontent-c1": "_ngcontent-c1-2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, el := range append(tags(target, "p"), tags(target, "b")...) {
		if !el.HasAttribute("_ngcontent-c1-2") || el.HasAttribute("_ngcontent-c1") {
			t.Errorf("<%s> attrs = %v", el.Tag, el.Attributes())
		}
	}
}

func TestRerenderDestroysPreviousEffects(t *testing.T) {
	f := newFixture()
	count := reactive.NewSignal(f.rt, 0)
	inst := map[string]any{"count": count}
	target := f.render(t, `<p [attr.n]="count()"></p><i *ngFor="let x of [1,2]" [attr.x]="x"></i>`, inst)
	first := f.reg.EffectCount()

	if err := f.r.Render(target, `<p [attr.n]="count()"></p><i *ngFor="let x of [1,2]" [attr.x]="x"></i>`, binding.Root(inst), Options{}); err != nil {
		t.Fatal(err)
	}
	if got := f.reg.EffectCount(); got != first {
		t.Errorf("EffectCount after rerender = %d, want %d", got, first)
	}
	count.Set(1)
	if !strings.Contains(dom.InnerHTML(target), `n="1"`) {
		t.Errorf("expected updated attribute, got %s", dom.InnerHTML(target))
	}
}

func TestRegionCallbackRunsOnMicrotask(t *testing.T) {
	f := newFixture()
	calls := 0
	target := f.doc.CreateElement("div")
	_ = f.r.Render(target, `<i *ngFor="let x of [1]"></i>`, binding.Root(nil), Options{OnRegion: func() { calls++ }})
	if calls != 0 {
		t.Fatal("callback must not run synchronously")
	}
	f.rt.Flush()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
