package chat

import (
	"sort"
	"sync"
)

// Registry is the presence table: user id -> the single live connection
// currently representing that user. Last association wins; the previous
// connection is neither closed nor notified.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]*Client // user_id -> live connection
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[string]*Client)}
}

// Associate records or overwrites the mapping for the user.
func (r *Registry) Associate(userID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = c
}

// Resolve returns the user's live connection, if any.
func (r *Registry) Resolve(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[userID]
	return c, ok
}

// Release removes the entry for whichever user maps to this exact
// connection. A stale teardown (the user has since re-associated on a newer
// connection) is a no-op, so the newer entry survives.
func (r *Registry) Release(c *Client) {
	user := c.UserID()
	if user == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.byUser[user]; ok && cur.ConnID == c.ConnID {
		delete(r.byUser, user)
	}
}

// Snapshot lists the currently associated user ids, sorted for stable
// presence broadcasts.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byUser))
	for user := range r.byUser {
		out = append(out, user)
	}
	sort.Strings(out)
	return out
}
