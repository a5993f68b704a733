package chat

import (
	"context"

	"marketgram/logger"
)

// JoinRoomHandler subscribes the connection to a conversation's fanout set.
// Two-party delivery resolves through the presence registry, but the join
// must still land so multi-party fanout can iterate membership later.
type JoinRoomHandler struct{}

func NewJoinRoomHandler() Handler { return &JoinRoomHandler{} }

func (h *JoinRoomHandler) Type() string { return EventJoinRoom }

func (h *JoinRoomHandler) Handle(_ context.Context, cc *Context, f *Frame, c *Client) error {
	p, err := DecodePayload[JoinRoomPayload](f)
	if err != nil {
		return err
	}
	if p.ConversationID == "" {
		logger.Infof("[join-room] empty conversationId conn=%s", c.ConnID)
		return nil
	}

	cc.S.Rooms().Join(p.ConversationID, c)
	logger.Infof("[join-room] conn=%s conv=%s", c.ConnID, p.ConversationID)
	return nil
}
