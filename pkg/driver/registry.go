package driver

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aquariux/wt-automation/pkg/logger"
	"github.com/aquariux/wt-automation/pkg/webdriver"
)

// Registry holds the open sessions of one test, at most one per platform.
type Registry struct {
	mu       sync.Mutex
	sessions map[Platform]*webdriver.Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[Platform]*webdriver.Client)}
}

// Add registers c for platform p, replacing any previous session.
func (r *Registry) Add(p Platform, c *webdriver.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[p] = c
}

// Get returns the session for p.
func (r *Registry) Get(p Platform) (*webdriver.Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[p]
	return c, ok
}

// Platforms lists the platforms with an open session, sorted.
func (r *Registry) Platforms() []Platform {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Platform, 0, len(r.sessions))
	for p := range r.sessions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// All returns the open sessions ordered by platform name.
func (r *Registry) All() []*webdriver.Client {
	platforms := r.Platforms()

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*webdriver.Client, 0, len(platforms))
	for _, p := range platforms {
		if c, ok := r.sessions[p]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Quit ends the session for p and removes it. Quitting a platform with no
// session is a no-op.
func (r *Registry) Quit(p Platform) error {
	r.mu.Lock()
	c, ok := r.sessions[p]
	delete(r.sessions, p)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	logger.Info("Quitting %s session %s", p, c.SessionID())
	if err := c.Disconnect(); err != nil {
		return fmt.Errorf("quit %s session: %w", p, err)
	}
	return nil
}

// QuitAll ends every open session concurrently and returns the first error.
func (r *Registry) QuitAll() error {
	var g errgroup.Group
	for _, p := range r.Platforms() {
		p := p
		g.Go(func() error { return r.Quit(p) })
	}
	return g.Wait()
}
