package chat

import (
	"sync"
)

// Rooms maps a conversation id to the set of connections subscribed to it.
// Membership is per-connection and process-local. A reverse index keeps the
// disconnect purge proportional to the connection's own memberships.
type Rooms struct {
	mu     sync.RWMutex
	byConv map[string]map[string]*Client  // conversation_id -> conn_id -> conn
	byConn map[string]map[string]struct{} // conn_id -> set of conversation_id
}

func NewRooms() *Rooms {
	return &Rooms{
		byConv: make(map[string]map[string]*Client),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Join subscribes the connection to the conversation. Idempotent; the room
// is created implicitly on first join.
func (r *Rooms) Join(conversationID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.byConv[conversationID]
	if m == nil {
		m = make(map[string]*Client)
		r.byConv[conversationID] = m
	}
	m[c.ConnID] = c

	set := r.byConn[c.ConnID]
	if set == nil {
		set = make(map[string]struct{})
		r.byConn[c.ConnID] = set
	}
	set[conversationID] = struct{}{}
}

// Leave removes the connection from one conversation's membership set.
func (r *Rooms) Leave(conversationID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(conversationID, c.ConnID)
}

// LeaveAll purges the connection from every room it joined. Called on
// disconnect; required to keep a long-lived process from leaking membership.
func (r *Rooms) LeaveAll(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for conversationID := range r.byConn[c.ConnID] {
		r.leaveLocked(conversationID, c.ConnID)
	}
}

func (r *Rooms) leaveLocked(conversationID, connID string) {
	if m := r.byConv[conversationID]; m != nil {
		delete(m, connID)
		if len(m) == 0 {
			delete(r.byConv, conversationID)
		}
	}
	if set := r.byConn[connID]; set != nil {
		delete(set, conversationID)
		if len(set) == 0 {
			delete(r.byConn, connID)
		}
	}
}

// Members returns the connections currently subscribed to the conversation.
// Internal fanout scoping only; not exposed to clients.
func (r *Rooms) Members(conversationID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byConv[conversationID]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}
