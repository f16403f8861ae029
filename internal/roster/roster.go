// Package roster maps agent names to stable display colors.
package roster

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ID names a participant in the observed conversation. Any string is a
// valid ID; ids outside the roster simply get the fallback color.
type ID string

// Member is one pre-seeded roster entry.
type Member struct {
	ID    ID
	Color lipgloss.Color
	Role  string
}

// FallbackColor is shared by every id that is not on the roster.
const FallbackColor = lipgloss.Color("7") // white

// DefaultMembers returns the built-in roster in legend order.
func DefaultMembers() []Member {
	return []Member{
		{ID: "Builder", Color: lipgloss.Color("6"), Role: "Architecture & Core Systems"},
		{ID: "Synthesizer", Color: lipgloss.Color("5"), Role: "Adaptive Intelligence"},
		{ID: "Catalyst", Color: lipgloss.Color("3"), Role: "Rapid Prototyping"},
		{ID: "Orchestrator", Color: lipgloss.Color("2"), Role: "Network Coordination"},
		{ID: "Marketer", Color: lipgloss.Color("1"), Role: "Marketing Strategy"},
		{ID: "Architect", Color: lipgloss.Color("4"), Role: "Microservices Design"},
		{ID: "SYSTEM", Color: lipgloss.Color("7")},
	}
}

// Registry resolves ids to colors. It is read-only after construction and
// safe for concurrent use.
type Registry struct {
	members []Member
	colors  map[ID]lipgloss.Color
}

// New builds a registry from members. Overrides (name -> color) replace the
// color of an existing member or append a new one; blank entries are ignored.
func New(members []Member, overrides map[string]string) *Registry {
	r := &Registry{colors: make(map[ID]lipgloss.Color, len(members)+len(overrides))}
	for _, m := range members {
		r.add(m)
	}
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		color := strings.TrimSpace(overrides[name])
		name = strings.TrimSpace(name)
		if name == "" || color == "" {
			continue
		}
		r.add(Member{ID: ID(name), Color: lipgloss.Color(color)})
	}
	return r
}

// Default returns a registry seeded with DefaultMembers.
func Default() *Registry {
	return New(DefaultMembers(), nil)
}

func (r *Registry) add(m Member) {
	if _, ok := r.colors[m.ID]; ok {
		for i := range r.members {
			if r.members[i].ID == m.ID {
				r.members[i].Color = m.Color
			}
		}
	} else {
		r.members = append(r.members, m)
	}
	r.colors[m.ID] = m.Color
}

// ColorFor returns the color for id, or FallbackColor when id is unknown.
func (r *Registry) ColorFor(id ID) lipgloss.Color {
	if c, ok := r.colors[id]; ok {
		return c
	}
	return FallbackColor
}

// Known reports whether id is on the roster.
func (r *Registry) Known(id ID) bool {
	_, ok := r.colors[id]
	return ok
}

// Members returns a copy of the roster in legend order.
func (r *Registry) Members() []Member {
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}
