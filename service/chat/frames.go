package chat

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"

	"marketgram/service/storage"
	"marketgram/tools/errs"
)

// Logical event types on the wire. One JSON frame per websocket message:
// {"type": "<event>", "data": {...}}.
const (
	EventAssociate        = "associate"
	EventJoinRoom         = "join-room"
	EventSendMessage      = "send-message"
	EventMessageDelivered = "message-delivered"
	EventPresenceSnapshot = "presence-snapshot"
)

type Frame struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errs.WrapMsg(err, "unmarshal frame")
	}
	if f.Type == "" {
		return nil, errs.New("frame has no type")
	}
	return &f, nil
}

// DecodePayload maps the frame's data object onto a typed payload.
func DecodePayload[T any](f *Frame) (*T, error) {
	var out T
	if err := mapstructure.Decode(f.Data, &out); err != nil {
		return nil, errs.WrapMsg(err, "decode "+f.Type+" payload")
	}
	return &out, nil
}

type AssociatePayload struct {
	UserID string `mapstructure:"userId"`
}

type JoinRoomPayload struct {
	ConversationID string `mapstructure:"conversationId"`
}

type SendMessagePayload struct {
	ConversationID string `mapstructure:"conversationId"`
	SenderID       string `mapstructure:"senderId"`
	Body           string `mapstructure:"body"`
}

// ---- server-side frame constructors ----

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// BuildMessageDelivered carries the fully persisted message, including the
// server-assigned id, timestamp and sender display attributes. The same
// frame serves the recipient push and the sender acknowledgment; clients
// de-duplicate by message id.
func BuildMessageDelivered(msg *storage.Message) []byte {
	raw, _ := json.Marshal(envelope{Type: EventMessageDelivered, Data: msg})
	return raw
}

// BuildPresenceSnapshot carries the currently associated user ids.
func BuildPresenceSnapshot(userIDs []string) []byte {
	raw, _ := json.Marshal(envelope{
		Type: EventPresenceSnapshot,
		Data: map[string]any{"userIds": userIDs},
	})
	return raw
}
