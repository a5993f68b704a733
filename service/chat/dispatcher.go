package chat

import (
	"context"
	"fmt"
)

// Handler processes one inbound event type for one connection.
type Handler interface {
	Type() string
	Handle(ctx context.Context, cc *Context, f *Frame, c *Client) error
}

// Context hands the owning server to handlers.
type Context struct {
	S *Server
}

// Dispatcher is the explicit event-dispatch table: each inbound event type
// maps to exactly one handler.
type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

func (d *Dispatcher) Register(h Handler) { d.handlers[h.Type()] = h }

func (d *Dispatcher) Dispatch(ctx context.Context, cc *Context, f *Frame, c *Client) error {
	h, ok := d.handlers[f.Type]
	if !ok {
		return fmt.Errorf("no handler for type=%q", f.Type)
	}
	return h.Handle(ctx, cc, f, c)
}

func (d *Dispatcher) GetHandler(eventType string) Handler {
	return d.handlers[eventType]
}
