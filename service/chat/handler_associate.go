package chat

import (
	"context"

	"marketgram/logger"
)

// AssociateHandler binds a logical user to the connection and broadcasts the
// updated presence snapshot.
type AssociateHandler struct{}

func NewAssociateHandler() Handler { return &AssociateHandler{} }

func (h *AssociateHandler) Type() string { return EventAssociate }

func (h *AssociateHandler) Handle(_ context.Context, cc *Context, f *Frame, c *Client) error {
	p, err := DecodePayload[AssociatePayload](f)
	if err != nil {
		return err
	}
	if p.UserID == "" {
		logger.Infof("[associate] empty userId conn=%s", c.ConnID)
		return nil
	}

	c.Associate(p.UserID)
	cc.S.Registry().Associate(p.UserID, c)
	logger.Infof("[associate] user=%s conn=%s", p.UserID, c.ConnID)

	cc.S.BroadcastPresence()
	return nil
}
