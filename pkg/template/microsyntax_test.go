package template

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLoop(t *testing.T) {
	tests := []struct {
		src  string
		want Loop
	}{
		{"let x of items()", Loop{Var: "x", Expr: "items()"}},
		{"let k in obj", Loop{Var: "k", Expr: "obj", Keys: true}},
		{"let x of xs; trackBy: byID; let i = index", Loop{
			Var: "x", Expr: "xs", TrackBy: "byID", Locals: map[string]string{"i": "index"},
		}},
		{"let x of xs; index as i; let f = first", Loop{
			Var: "x", Expr: "xs", Locals: map[string]string{"i": "index", "f": "first"},
		}},
	}
	for _, tt := range tests {
		got, err := ParseLoop(tt.src)
		if err != nil {
			t.Errorf("ParseLoop(%q): %v", tt.src, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseLoop(%q) mismatch (-want +got):\n%s", tt.src, diff)
		}
	}

	for _, src := range []string{"", "x of xs", "let x from xs", "let x of xs; let i = bogus"} {
		if _, err := ParseLoop(src); !errors.Is(err, ErrMalformed) {
			t.Errorf("ParseLoop(%q) = %v, want ErrMalformed", src, err)
		}
	}
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		src  string
		want Condition
	}{
		{"visible", Condition{Expr: "visible"}},
		{"user(); let u", Condition{Expr: "user()", Alias: "u"}},
		{"user() as u", Condition{Expr: "user()", Alias: "u"}},
		{"x; let v = ngIf", Condition{Expr: "x", Alias: "v"}},
	}
	for _, tt := range tests {
		got, err := ParseCondition(tt.src)
		if err != nil {
			t.Errorf("ParseCondition(%q): %v", tt.src, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCondition(%q) = %+v, want %+v", tt.src, got, tt.want)
		}
	}
	if _, err := ParseCondition("  "); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestParseMarker(t *testing.T) {
	got, err := ParseMarker("F:opt:a ? b : c")
	if err != nil {
		t.Fatal(err)
	}
	if got.Var != "opt" || got.Expr != "a ? b : c" {
		t.Errorf("got %+v", got)
	}
	for _, bad := range []string{"F::x", "F:opt:", "F:1x:y", "G:a:b"} {
		if _, err := ParseMarker(bad); err == nil {
			t.Errorf("ParseMarker(%q): expected error", bad)
		}
	}
}
