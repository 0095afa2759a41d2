// Package nav is the dashboard's section registry and navigation controller.
package nav

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"tableflip.dev/zdash/pkg/view"
)

// SectionID names one navigable view, e.g. "pending-registrations".
type SectionID string

// Dashboard is the section every role starts on and error panels return to.
const Dashboard SectionID = "dashboard"

// Container is where a loader draws.
type Container interface {
	Render(p view.Panel)
}

// Cleanup reverses whatever a loader installed (timers, key handlers).
type Cleanup func()

// Loader fetches and renders one section. The returned cleanup, if any, runs
// before the next navigation.
type Loader interface {
	Load(ctx context.Context, c Container) (Cleanup, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, c Container) (Cleanup, error)

func (f LoaderFunc) Load(ctx context.Context, c Container) (Cleanup, error) {
	return f(ctx, c)
}

// Section is one registry entry.
type Section struct {
	ID     SectionID
	Title  string
	Group  string
	Loader Loader
	// Hidden sections are routable but left out of the sidebar.
	Hidden bool
}

// Registry maps section ids to loaders. Entries cannot change once
// registered.
type Registry struct {
	mu       sync.RWMutex
	order    []SectionID
	sections map[SectionID]Section
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sections: make(map[SectionID]Section)}
}

// Register adds s. Registering an id twice is an error.
func (r *Registry) Register(s Section) error {
	if s.ID == "" {
		return fmt.Errorf("nav: section id required")
	}
	if s.Loader == nil {
		return fmt.Errorf("nav: section %q has no loader", s.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sections[s.ID]; ok {
		return fmt.Errorf("nav: section %q already registered", s.ID)
	}
	r.sections[s.ID] = s
	r.order = append(r.order, s.ID)
	return nil
}

// MustRegister is Register for static tables.
func (r *Registry) MustRegister(sections ...Section) *Registry {
	for _, s := range sections {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Has reports whether id is registered.
func (r *Registry) Has(id SectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sections[id]
	return ok
}

// Loader resolves id, falling back to the placeholder for unknown ids.
func (r *Registry) Loader(id SectionID) Loader {
	r.mu.RLock()
	s, ok := r.sections[id]
	r.mu.RUnlock()
	if ok {
		return s.Loader
	}
	return placeholder{name: r.DisplayName(id)}
}

// DisplayName is the registered title, or the id title-cased.
func (r *Registry) DisplayName(id SectionID) string {
	r.mu.RLock()
	s, ok := r.sections[id]
	r.mu.RUnlock()
	if ok && s.Title != "" {
		return s.Title
	}
	return TitleCase(string(id))
}

// Sections lists visible sections in registration order.
func (r *Registry) Sections() []Section {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Section, 0, len(r.order))
	for _, id := range r.order {
		if s := r.sections[id]; !s.Hidden {
			out = append(out, s)
		}
	}
	return out
}

// TitleCase turns "pending-registrations" into "Pending Registrations".
func TitleCase(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' || unicode.IsSpace(r) })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Placeholder is the loader for sections that exist in the sidebar but have
// no content yet.
func Placeholder(name string) Loader {
	return placeholder{name: name}
}

type placeholder struct {
	name string
}

func (p placeholder) Load(_ context.Context, c Container) (Cleanup, error) {
	c.Render(view.Panel{
		Kind:    view.KindPlaceholder,
		Title:   "Under Construction",
		Message: fmt.Sprintf("The '%s' section is not yet implemented.", p.name),
	})
	return nil, nil
}
