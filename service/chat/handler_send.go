package chat

import (
	"context"
)

// SendMessageHandler feeds the delivery pipeline. Pipeline failures are
// contained there; this handler never errors the connection for them.
type SendMessageHandler struct{}

func NewSendMessageHandler() Handler { return &SendMessageHandler{} }

func (h *SendMessageHandler) Type() string { return EventSendMessage }

func (h *SendMessageHandler) Handle(ctx context.Context, cc *Context, f *Frame, c *Client) error {
	p, err := DecodePayload[SendMessagePayload](f)
	if err != nil {
		return err
	}
	cc.S.Pipeline().Send(ctx, c, p.ConversationID, p.SenderID, p.Body)
	return nil
}
