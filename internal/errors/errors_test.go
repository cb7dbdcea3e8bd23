package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewUsesRegisteredTemplate(t *testing.T) {
	e := New("L002")
	if e.Category != CategoryManifest || e.Message != "Manifest is invalid" {
		t.Errorf("New(L002) = %+v", e)
	}
	if got := New("L999").Message; got != "Unknown error" {
		t.Errorf("unknown code message = %q", got)
	}
}

func TestErrorStringAndUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	e := New("L001").WithFile("app.yaml").Wrap(cause)
	if got, want := e.Error(), "app.yaml: L001: Manifest not found: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	wrapped := fmt.Errorf("render: %w", e)
	if !stderrors.Is(wrapped, cause) {
		t.Error("cause not reachable through errors.Is")
	}
	if FromError(wrapped, "L040") != e {
		t.Error("FromError did not return the existing *Error")
	}
	if got := FromError(cause, "L030"); got.Code != "L030" || got.Wrapped != cause {
		t.Errorf("FromError(plain) = %+v", got)
	}
	if FromError(nil, "L030") != nil {
		t.Error("FromError(nil) != nil")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	e := New("L003").WithFile("app.yaml").WithHint("define it under directives").Wrap(stderrors.New("no pipe upper"))
	out := e.Format()
	for _, want := range []string{
		"ERROR L003: Unknown reference",
		"  app.yaml",
		"Hint: define it under directives",
		"Cause: no pipe upper",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if got := e.FormatCompact(); got != "app.yaml: L003: Unknown reference" {
		t.Errorf("FormatCompact() = %q", got)
	}

	var buf bytes.Buffer
	Print(&buf, stderrors.New("plain"))
	if buf.String() != "ERROR: plain\n" {
		t.Errorf("Print(plain) = %q", buf.String())
	}
}

func TestCodesSorted(t *testing.T) {
	codes := Codes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
	if _, ok := Lookup(codes[0]); !ok {
		t.Errorf("Lookup(%q) failed", codes[0])
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
	if len(lines) < 2 {
		t.Errorf("expected several lines, got %v", lines)
	}
}
