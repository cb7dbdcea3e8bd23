package main

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/lumen/internal/errors"
)

const greeter = `
root: app-hello
components:
  - selector: app-hello
    template: '<p>hello {{ name }}</p><app-bye></app-bye>'
    imports: [app-bye]
    state: { name: world }
  - selector: app-bye
    template: '<em>bye</em>'
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(io.Discard)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func code(err error) string {
	var lerr *errors.Error
	if stderrors.As(err, &lerr) {
		return lerr.Code
	}
	return ""
}

func TestRenderToStdout(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.yaml", greeter)
	out, err := run(t, "render", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"<!DOCTYPE html>", "hello world</p>", "<em", "bye</em>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestRenderRootOverride(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.yaml", greeter)
	out, err := run(t, "render", path, "--root", "app-bye")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "hello") || !strings.Contains(out, "bye</em>") {
		t.Errorf("output:\n%s", out)
	}

	_, err = run(t, "render", path, "--root", "app-nope")
	if code(err) != "L021" {
		t.Errorf("unknown root = %v, want L021", err)
	}
}

func TestRenderOutAndPublish(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.yaml", greeter)
	outFile := filepath.Join(dir, "out.html")
	pubFile := filepath.Join(dir, "site", "index.html")

	out, err := run(t, "render", path, "--out", outFile, "--publish", pubFile)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "wrote "+outFile) || !strings.Contains(out, "published "+pubFile) {
		t.Errorf("output:\n%s", out)
	}
	a, _ := os.ReadFile(outFile)
	b, _ := os.ReadFile(pubFile)
	if len(a) == 0 || !bytes.Equal(a, b) {
		t.Errorf("out and published documents differ:\n%s\n%s", a, b)
	}
}

func TestRenderWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "site.yaml", greeter)
	cfg := writeFile(t, dir, "lumen.yaml", "manifest: site.yaml\nroot: app-bye\n")

	out, err := run(t, "render", "--config", cfg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "bye</em>") || strings.Contains(out, "hello") {
		t.Errorf("output:\n%s", out)
	}

	_, err = run(t, "render", "--config", cfg, "--log-level", "loud")
	if code(err) != "L010" {
		t.Errorf("bad log level = %v, want L010", err)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", greeter)
	out, err := run(t, "check", good)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "2 components, root app-hello") {
		t.Errorf("output: %s", out)
	}

	bad := writeFile(t, dir, "bad.yaml", strings.Replace(greeter, "imports: [app-bye]", "imports: [app-gone]", 1))
	if _, err := run(t, "check", bad); code(err) != "L003" {
		t.Errorf("unknown import = %v, want L003", err)
	}
	if _, err := run(t, "check", filepath.Join(dir, "missing.yaml")); code(err) != "L001" {
		t.Errorf("missing manifest = %v, want L001", err)
	}
}

func TestExplain(t *testing.T) {
	out, err := run(t, "explain", "l002")
	if err != nil || !strings.Contains(out, "L002: Manifest is invalid (manifest)") {
		t.Errorf("explain l002 = %q, %v", out, err)
	}

	out, err = run(t, "explain")
	if err != nil || strings.Count(out, "\n") != len(errors.Codes()) {
		t.Errorf("explain listing = %q, %v", out, err)
	}

	if _, err := run(t, "explain", "X999"); code(err) != "L040" {
		t.Errorf("unknown code = %v, want L040", err)
	}
}

func TestVersionShort(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil || out != version+"\n" {
		t.Errorf("version --short = %q, %v", out, err)
	}
}
