package sections

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tableflip.dev/zdash/pkg/nav"
	"tableflip.dev/zdash/pkg/view"
)

// ErrUnknownSection is returned by Render for ids the dashboard lacks.
var ErrUnknownSection = errors.New("sections: unknown section")

// capture keeps the last panel a loader rendered.
type capture struct {
	mu    sync.Mutex
	panel view.Panel
	set   bool
}

func (c *capture) Render(p view.Panel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panel, c.set = p, true
}

// Render runs the loader of id once and returns what it drew. Any cleanup
// the loader installs runs before Render returns, so timers and key
// handlers do not outlive the call.
func Render(ctx context.Context, reg *nav.Registry, id nav.SectionID) (view.Panel, error) {
	if !reg.Has(id) {
		return view.Panel{}, fmt.Errorf("%w %q", ErrUnknownSection, id)
	}
	c := &capture{}
	cleanup, err := reg.Loader(id).Load(ctx, c)
	if cleanup != nil {
		cleanup()
	}
	if err != nil {
		return view.Panel{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.panel
	if p.Title == "" {
		p.Title = reg.DisplayName(id)
	}
	return p, nil
}
