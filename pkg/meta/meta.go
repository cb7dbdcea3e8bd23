// Package meta describes compiled components, directives and pipes, and
// the lifecycle hooks their instances may implement.
package meta

import (
	"fmt"
	"reflect"
	"sort"
)

// Token identifies an injectable. It is usually the reflect.Type of a
// component, directive, pipe or service, or a string key.
type Token any

// TypeToken returns the token for T.
func TypeToken[T any]() Token {
	return reflect.TypeFor[T]()
}

// TokenName formats a token for error messages.
func TokenName(t Token) string {
	switch x := t.(type) {
	case reflect.Type:
		return x.String()
	case string:
		return x
	}
	return fmt.Sprint(t)
}

// Encapsulation selects how component styles are scoped.
type Encapsulation int

const (
	// Emulated rewrites styles against a per-scope host attribute.
	Emulated Encapsulation = iota
	// ShadowTree renders into a shadow root with unscoped styles.
	ShadowTree
	// None appends styles verbatim into the host.
	None
)

func (e Encapsulation) String() string {
	switch e {
	case Emulated:
		return "emulated"
	case ShadowTree:
		return "shadow"
	case None:
		return "none"
	}
	return "unknown"
}

// ParseEncapsulation parses the names produced by String.
func ParseEncapsulation(s string) (Encapsulation, error) {
	switch s {
	case "", "emulated":
		return Emulated, nil
	case "shadow", "shadowdom":
		return ShadowTree, nil
	case "none":
		return None, nil
	}
	return Emulated, fmt.Errorf("lumen: unknown encapsulation %q", s)
}

// Definition is a compiled component, directive or pipe.
type Definition interface {
	DefinitionToken() Token
}

// ComponentDef is the compiler output for a component.
type ComponentDef struct {
	Type          Token
	Selector      string
	Template      string
	Style         string
	Encapsulation Encapsulation
	Imports       []Definition
	Providers     []Token
	// ScopeID is the id the compiler used in _ngcontent-/_nghost-
	// attributes.
	ScopeID string
	Inputs  []string
	Outputs []string
}

// DefinitionToken implements Definition.
func (d *ComponentDef) DefinitionToken() Token { return d.Type }

// DirectiveDef is the compiler output for an attribute directive.
type DirectiveDef struct {
	Type     Token
	Selector string
	Inputs   []string
	Outputs  []string
	// Host maps host binding keys such as "(click)", "[class.on]" or
	// "[attr.role]" to expressions evaluated against the instance.
	Host      map[string]string
	Providers []Token
}

// DefinitionToken implements Definition.
func (d *DirectiveDef) DefinitionToken() Token { return d.Type }

// HostKeys returns the host binding keys in a stable order.
func (d *DirectiveDef) HostKeys() []string {
	keys := make([]string, 0, len(d.Host))
	for k := range d.Host {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PipeDef is the compiler output for a pipe.
type PipeDef struct {
	Name string
	Type Token
}

// DefinitionToken implements Definition.
func (d *PipeDef) DefinitionToken() Token { return d.Type }

// Injector creates instances for tokens. Providers listed by a component
// or directive shadow the injector's own entries for that instance.
type Injector interface {
	CreateInstance(t Token, providers []Token) (any, error)
}
