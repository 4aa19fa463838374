package report

import (
	"github.com/google/uuid"
	"github.com/vk/godi/component"
)

// Dump is the result of one run: every source that registered components.
type Dump struct {
	RunID   string   `json:"run_id" yaml:"run_id"`
	Sources []Source `json:"sources" yaml:"sources"`
}

// Source is one library, or one manifest load, and what it registered.
type Source struct {
	Source     string  `json:"source" yaml:"source"`
	Components []Entry `json:"components" yaml:"components"`
}

// Entry describes one registered component.
type Entry struct {
	ID         int64             `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Type       string            `json:"type" yaml:"type"`
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// NewDump starts an empty dump with a fresh run ID.
func NewDump() *Dump {
	return &Dump{RunID: uuid.NewString()}
}

// Snapshot captures the descriptors held directly by r, in registration order.
func Snapshot(source string, r *component.Registry) Source {
	s := Source{Source: source, Components: []Entry{}}
	for _, d := range r.Descriptors() {
		s.Components = append(s.Components, Entry{
			ID:         int64(d.ID()),
			Name:       d.Name(),
			Type:       d.TypeName(),
			Properties: d.Properties(),
		})
	}
	return s
}

// Add records the components r holds for source. Registries with no local
// components are skipped, like libraries that declare nothing. It reports
// whether the source was added.
func (d *Dump) Add(source string, r *component.Registry) bool {
	if r.Len() == 0 {
		return false
	}
	d.Sources = append(d.Sources, Snapshot(source, r))
	return true
}

// Len returns the number of components across all sources.
func (d *Dump) Len() int {
	n := 0
	for _, s := range d.Sources {
		n += len(s.Components)
	}
	return n
}
