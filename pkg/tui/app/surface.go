package teaui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/zdash/pkg/nav"
	"tableflip.dev/zdash/pkg/view"
)

// surfaceMsg tells Update the surface changed. It carries nothing; Update
// reads the latest state so late deliveries never roll anything back.
type surfaceMsg struct{}

// surface is the controller's Host and Container. Loaders write to it from
// command goroutines and, for games, from inside Update itself, so it never
// blocks on the program.
type surface struct {
	send func(tea.Msg)

	mu     sync.Mutex
	active nav.SectionID
	title  string
	back   bool
	panel  view.Panel
	seq    uint64
}

func newSurface(send func(tea.Msg)) *surface {
	return &surface{send: send}
}

func (s *surface) SetActive(id nav.SectionID) {
	s.update(func() { s.active = id })
}

func (s *surface) SetTitle(title string) {
	s.update(func() { s.title = title })
}

func (s *surface) SetBackVisible(visible bool) {
	s.update(func() { s.back = visible })
}

func (s *surface) Render(p view.Panel) {
	s.update(func() { s.panel = p })
}

func (s *surface) update(fn func()) {
	s.mu.Lock()
	fn()
	s.seq++
	s.mu.Unlock()
	if s.send != nil {
		go s.send(surfaceMsg{})
	}
}

type surfaceState struct {
	active nav.SectionID
	title  string
	back   bool
	panel  view.Panel
	seq    uint64
}

func (s *surface) snapshot() surfaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return surfaceState{active: s.active, title: s.title, back: s.back, panel: s.panel, seq: s.seq}
}
