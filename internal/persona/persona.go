// Package persona defines agent personas and the static registry that owns
// them. The registry is populated once at startup and is read-only afterwards,
// so no locking is needed at request time.
package persona

import (
	"errors"
	"fmt"

	"github.com/RouteClaw/RouteClaw/internal/tools"
)

// ErrUnknownPersona is returned when a persona id is not registered.
var ErrUnknownPersona = errors.New("unknown persona")

// Auto is the sentinel persona id that requests router classification.
const Auto = "auto"

// Persona is a named agent configuration that can handle a chat message.
type Persona struct {
	ID              string
	DisplayName     string
	Goal            string
	Backstory       string
	ToolNames       []string
	AllowDelegation bool
}

// Registry is the static persona table. Identity is Persona.ID.
type Registry struct {
	personas []Persona
	byID     map[string]int
	tools    *tools.Registry
}

// NewRegistry creates a registry over the given personas, resolving tool
// names against toolReg. Duplicate ids are rejected.
func NewRegistry(personas []Persona, toolReg *tools.Registry) (*Registry, error) {
	r := &Registry{
		personas: make([]Persona, 0, len(personas)),
		byID:     make(map[string]int, len(personas)),
		tools:    toolReg,
	}
	for _, p := range personas {
		if p.ID == "" {
			return nil, fmt.Errorf("persona with empty id")
		}
		if p.ID == Auto {
			return nil, fmt.Errorf("persona id %q is reserved", Auto)
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %q", p.ID)
		}
		r.byID[p.ID] = len(r.personas)
		r.personas = append(r.personas, p)
	}
	return r, nil
}

// List returns all personas in registration order.
func (r *Registry) List() []Persona {
	result := make([]Persona, len(r.personas))
	copy(result, r.personas)
	return result
}

// Get returns the persona with the given id.
func (r *Registry) Get(id string) (Persona, error) {
	idx, ok := r.byID[id]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrUnknownPersona, id)
	}
	return r.personas[idx], nil
}

// Has reports whether the given id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Tools returns the resolved tool set for a persona, in the persona's
// declared order. Tool names that are not registered are skipped.
func (r *Registry) Tools(id string) ([]tools.Tool, error) {
	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if r.tools == nil {
		return nil, nil
	}
	result := make([]tools.Tool, 0, len(p.ToolNames))
	for _, name := range p.ToolNames {
		if tool, ok := r.tools.Get(name); ok {
			result = append(result, tool)
		}
	}
	return result, nil
}

// ToolRegistry returns a registry subset holding only the persona's tools.
func (r *Registry) ToolRegistry(id string) (*tools.Registry, error) {
	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if r.tools == nil {
		return tools.NewRegistry(), nil
	}
	return r.tools.Subset(p.ToolNames), nil
}
