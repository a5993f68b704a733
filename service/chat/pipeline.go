package chat

import (
	"context"
	"strings"

	"marketgram/logger"
	"marketgram/service/storage"
)

// Pipeline persists an outbound chat message and fans it out: the recipient's
// live connection gets a push if one exists, the sending connection always
// gets an acknowledgment carrying the persisted record. Persistence is
// authoritative; delivery is best-effort.
type Pipeline struct {
	store    storage.Store
	registry *Registry
}

func NewPipeline(store storage.Store, registry *Registry) *Pipeline {
	return &Pipeline{store: store, registry: registry}
}

// Send runs one delivery: validate, persist, resolve recipient, push.
// Ordering within a send is strict (persist happens-before any fanout);
// the recipient push and the sender ack are not ordered relative to each
// other. Failures are contained here and never escalate to the connection.
func (p *Pipeline) Send(ctx context.Context, sender *Client, conversationID, senderID, body string) {
	if strings.TrimSpace(body) == "" {
		// compatible silent drop: no persistence, no events
		logger.Debugf("[pipeline] empty body dropped conv=%s sender=%s", conversationID, senderID)
		return
	}

	msg, err := p.store.CreateMessage(ctx, conversationID, senderID, body)
	if err != nil {
		logger.Errorf("[pipeline] persist failed conv=%s sender=%s err=%v", conversationID, senderID, err)
		return
	}

	participants, err := p.store.GetConversationParticipants(ctx, conversationID)
	if err != nil {
		// the message stays persisted; fanout and ack are both skipped
		logger.Errorf("[pipeline] participant lookup failed conv=%s err=%v", conversationID, err)
		return
	}

	recipientID := participants[0]
	if recipientID == senderID {
		recipientID = participants[1]
	}

	payload := BuildMessageDelivered(msg)

	if rc, ok := p.registry.Resolve(recipientID); ok {
		if !rc.TrySend(payload) {
			logger.Warn("[pipeline] recipient queue full, dropped push")
		}
	}

	// ack to the originating connection regardless of recipient presence,
	// so the sender's UI reflects the canonical persisted record
	if !sender.TrySend(payload) {
		logger.Debugf("[pipeline] sender gone before ack conn=%s msg=%s", sender.ConnID, msg.ID)
	}
}
