// Package manifest loads compiler output describing components,
// directives, pipes and services, and turns it into definitions and an
// injector the element runtime can bootstrap.
//
//	root: app-root
//	components:
//	  - selector: app-root
//	    template: '<h1>{{ title }}</h1><button (click)="bump()">+</button>'
//	    style: ':host { display: block }'
//	    state: { title: Hello, count: 0 }
//	    methods: { bump: 'count = count + 1' }
//
// JSON manifests use the same keys.
package manifest

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/lumen/internal/errors"
)

// Manifest is the decoded compiler output.
type Manifest struct {
	Root       string      `yaml:"root"`
	Components []Component `yaml:"components"`
	Directives []Directive `yaml:"directives"`
	Pipes      []Pipe      `yaml:"pipes"`
	Services   []Service   `yaml:"services"`
}

// Component describes one component.
type Component struct {
	Selector      string            `yaml:"selector"`
	Template      string            `yaml:"template"`
	Style         string            `yaml:"style"`
	Encapsulation string            `yaml:"encapsulation"`
	ScopeID       string            `yaml:"scopeId"`
	Imports       []string          `yaml:"imports"`
	Inputs        []string          `yaml:"inputs"`
	Outputs       []string          `yaml:"outputs"`
	Providers     []string          `yaml:"providers"`
	Inject        []string          `yaml:"inject"`
	State         map[string]any    `yaml:"state"`
	Methods       map[string]string `yaml:"methods"`
}

// Directive describes one attribute directive.
type Directive struct {
	Name     string            `yaml:"name"`
	Selector string            `yaml:"selector"`
	Inputs   []string          `yaml:"inputs"`
	Outputs  []string          `yaml:"outputs"`
	Host     map[string]string `yaml:"host"`
	Inject   []string          `yaml:"inject"`
	State    map[string]any    `yaml:"state"`
	Methods  map[string]string `yaml:"methods"`
}

// Pipe describes a pipe whose transform is an expression over $value and
// $args.
type Pipe struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

// Service describes injectable shared state.
type Service struct {
	Name    string            `yaml:"name"`
	State   map[string]any    `yaml:"state"`
	Methods map[string]string `yaml:"methods"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("L001").WithFile(path).Wrap(err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.FromError(err, "L002").WithFile(path)
	}
	return m, nil
}

// Parse decodes a YAML or JSON manifest and validates it.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, errors.New("L002").Wrap(err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks names and references.
func (m *Manifest) Validate() error {
	names := make(map[string]string)
	claim := func(kind, name string) error {
		if name == "" {
			return errors.New("L002").WithHint(kind + " needs a name")
		}
		if prev, ok := names[name]; ok {
			return errors.New("L002").WithHint(fmt.Sprintf("%s %q is already defined as a %s", kind, name, prev))
		}
		names[name] = kind
		return nil
	}
	for _, c := range m.Components {
		if err := claim("component", c.Selector); err != nil {
			return err
		}
	}
	for _, d := range m.Directives {
		if err := claim("directive", d.Name); err != nil {
			return err
		}
		if d.Selector == "" {
			return errors.New("L002").WithHint(fmt.Sprintf("directive %q needs a selector", d.Name))
		}
	}
	for _, p := range m.Pipes {
		if err := claim("pipe", p.Name); err != nil {
			return err
		}
	}
	for _, s := range m.Services {
		if err := claim("service", s.Name); err != nil {
			return err
		}
	}

	check := func(owner, kind string, refs []string, want ...string) error {
		for _, ref := range refs {
			got, ok := names[ref]
			if !ok || !contains(want, got) {
				return errors.New("L003").WithHint(fmt.Sprintf("%s lists %q under %s", owner, ref, kind))
			}
		}
		return nil
	}
	for _, c := range m.Components {
		if err := check(c.Selector, "imports", c.Imports, "component", "directive", "pipe"); err != nil {
			return err
		}
		if err := check(c.Selector, "providers", c.Providers, "service"); err != nil {
			return err
		}
		if err := check(c.Selector, "inject", c.Inject, "service"); err != nil {
			return err
		}
	}
	for _, d := range m.Directives {
		if err := check(d.Name, "inject", d.Inject, "service"); err != nil {
			return err
		}
	}
	if m.Root != "" {
		if names[m.Root] != "component" {
			return errors.New("L003").WithHint(fmt.Sprintf("root %q is not a component", m.Root))
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
