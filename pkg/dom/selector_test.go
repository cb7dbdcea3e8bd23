package dom

import (
	"errors"
	"testing"
)

func TestSelectorMatch(t *testing.T) {
	doc := NewDocument()
	frag, err := ParseHTML(doc, `<button id="go" class="btn primary" type="submit" _ngcontent-abc apphighlight [tooltip]="'x'"></button>`)
	if err != nil {
		t.Fatal(err)
	}
	btn := frag.FirstChild()

	tests := []struct {
		selector string
		bound    bool
		want     bool
	}{
		{"button", false, true},
		{"#go", false, true},
		{".btn.primary", false, true},
		{".btn.secondary", false, false},
		{"[type=submit]", false, true},
		{`[type="reset"]`, false, false},
		{"[_ngcontent-abc][appHighlight]", false, true},
		{"div, button", false, true},
		{"button:not(.primary)", false, false},
		{"button:not([disabled])", false, true},
		{"[tooltip]", false, false},
		{"[tooltip]", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			sel, err := ParseSelector(tt.selector)
			if err != nil {
				t.Fatalf("ParseSelector: %v", err)
			}
			if tt.bound {
				sel = sel.WithBoundForms()
			}
			if got := sel.Match(btn); got != tt.want {
				t.Errorf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectorErrors(t *testing.T) {
	for _, s := range []string{"", "div span", "a > b", ":not(:not(a))", "a)", ":not(a"} {
		if _, err := ParseSelector(s); !errors.Is(err, ErrSelector) {
			t.Errorf("ParseSelector(%q) error = %v, want ErrSelector", s, err)
		}
	}
}

func TestQuerySelectorAll(t *testing.T) {
	doc := NewDocument()
	frag, _ := ParseHTML(doc, `<ul><li class="x">1</li><li>2</li><li class="x">3</li></ul>`)

	got, err := frag.QuerySelectorAll("li.x")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].TextContent() != "1" || got[1].TextContent() != "3" {
		t.Errorf("unexpected matches: %d", len(got))
	}

	first, _ := frag.QuerySelector("li")
	if first == nil || first.TextContent() != "1" {
		t.Error("QuerySelector should return the first li")
	}
}
