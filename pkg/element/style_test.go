package element

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScopeStyle(t *testing.T) {
	tests := []struct {
		name     string
		css      string
		compiled string
		runtime  string
		want     string
	}{
		{"bare host", ":host{display:block}", "abc", "abc", "[_nghost-abc]{display:block}"},
		{"host with selector", ":host(.active) p{color:red}", "abc", "abc", "[_nghost-abc].active p{color:red}"},
		{"host selector list", ":host(.a, .b) span{}", "abc", "abc", "[_nghost-abc].a span,[_nghost-abc].b span{}"},
		{"host context", ":host-context(.dark) h1{}", "abc", "abc", ".dark[_nghost-abc] h1,.dark [_nghost-abc] h1{}"},
		{"bare host context", ":host-context h1{}", "abc", "abc", "[_nghost-abc] h1{}"},
		{"list with host", "h2, :host{margin:0}", "abc", "abc", "h2, [_nghost-abc]{margin:0}"},
		{"remap content attr", "p[_ngcontent-abc]{color:red}", "abc", "abc-1", "p[_ngcontent-abc-1]{color:red}"},
		{"remap host", ":host{a:b}[_nghost-abc] i{}", "abc", "abc-2", "[_nghost-abc-2]{a:b}[_nghost-abc-2] i{}"},
		{"longer ids untouched", "p[_ngcontent-abcd]{}", "abc", "abc-1", "p[_ngcontent-abcd]{}"},
		{"no host", "p{}", "abc", "abc", "p{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScopeStyle(tt.css, tt.compiled, tt.runtime)
			if got != tt.want {
				t.Errorf("ScopeStyle(%q) = %q, want %q", tt.css, got, tt.want)
			}
		})
	}
}

func TestIDPoolClaims(t *testing.T) {
	pool := NewIDPool()
	got := []string{pool.Claim("abc"), pool.Claim("abc"), pool.Claim("xyz"), pool.Claim("abc")}
	want := []string{"abc", "abc-1", "xyz", "abc-2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("claims mismatch (-want +got):\n%s", diff)
	}
}

func TestScopesRuntimeIsStablePerTable(t *testing.T) {
	pool := NewIDPool()
	first, second := NewScopes(pool), NewScopes(pool)
	if got := first.Runtime("c1"); got != "c1" {
		t.Errorf("first table = %q, want c1", got)
	}
	if got := first.Runtime("c1"); got != "c1" {
		t.Errorf("first table again = %q, want c1", got)
	}
	if got := second.Runtime("c1"); got != "c1-1" {
		t.Errorf("second table = %q, want c1-1", got)
	}
}
