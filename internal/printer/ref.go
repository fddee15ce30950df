package printer

import (
	"context"
	"sync"
)

// Ref is a swappable reference to the active Client. The config-update
// endpoint replaces the client at runtime, and every consumer reads through
// the same reference, so an address change takes effect everywhere without a
// restart.
type Ref struct {
	mu     sync.RWMutex
	client *Client
}

// NewRef creates a reference holding c.
func NewRef(c *Client) *Ref {
	return &Ref{client: c}
}

// Get returns the current client.
func (r *Ref) Get() *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client
}

// Set replaces the current client.
func (r *Ref) Set(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.client = c
}

// Syslog fetches through the current client.
func (r *Ref) Syslog(ctx context.Context, count int) ([]string, error) {
	return r.Get().Syslog(ctx, count)
}

// Configured reports whether the current client has an address.
func (r *Ref) Configured() bool {
	return r.Get().Configured()
}
