package storage

import (
	"context"
	"sync"
	"time"

	"marketgram/tools/errs"
	"marketgram/tools/ids"
)

// MemoryStore is a process-local Store. It backs tests and broker-less local
// runs with the same semantics as MongoStore.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
	convs map[string]*Conversation
	msgs  map[string][]*Message // conversation_id -> ordered messages
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]User),
		convs: make(map[string]*Conversation),
		msgs:  make(map[string][]*Message),
	}
}

// AddUser seeds a user record.
func (s *MemoryStore) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// AddConversation seeds a conversation and returns it.
func (s *MemoryStore) AddConversation(id string, participants ...string) *Conversation {
	now := time.Now().UTC()
	conv := &Conversation{ID: id, Participants: participants, CreatedAt: now, UpdatedAt: now}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[id] = conv
	return conv
}

func (s *MemoryStore) CreateMessage(_ context.Context, conversationID, senderID, body string) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.convs[conversationID]; !ok {
		return nil, errs.ErrNotFound.WrapMsg("conversation " + conversationID)
	}

	sender, ok := s.users[senderID]
	if !ok {
		sender = User{ID: senderID}
	}
	msg := &Message{
		ID:             ids.GenerateString(),
		ConversationID: conversationID,
		Sender:         sender,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}
	s.msgs[conversationID] = append(s.msgs[conversationID], msg)
	return msg, nil
}

func (s *MemoryStore) GetConversationParticipants(_ context.Context, conversationID string) ([2]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.convs[conversationID]
	if !ok {
		return [2]string{}, errs.ErrNotFound.WrapMsg("conversation " + conversationID)
	}
	if len(conv.Participants) != 2 {
		return [2]string{}, errs.ErrStorage.WrapMsg("conversation " + conversationID + " is not two-party")
	}
	return [2]string{conv.Participants[0], conv.Participants[1]}, nil
}

func (s *MemoryStore) FindOrCreateConversation(_ context.Context, userA, userB string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, conv := range s.convs {
		if len(conv.Participants) != 2 {
			continue
		}
		p0, p1 := conv.Participants[0], conv.Participants[1]
		if (p0 == userA && p1 == userB) || (p0 == userB && p1 == userA) {
			return conv, nil
		}
	}

	now := time.Now().UTC()
	conv := &Conversation{
		ID:           ids.GenerateString(),
		Participants: []string{userA, userB},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.convs[conv.ID] = conv
	return conv, nil
}

func (s *MemoryStore) ListConversations(_ context.Context, userID string) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Conversation
	for _, conv := range s.convs {
		for _, p := range conv.Participants {
			if p == userID {
				out = append(out, conv)
				break
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, conversationID string) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Message(nil), s.msgs[conversationID]...), nil
}

func (s *MemoryStore) GetUser(_ context.Context, userID string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, errs.ErrNotFound.WrapMsg("user " + userID)
	}
	return &u, nil
}

// MessageCount reports how many messages a conversation holds. Test hook.
func (s *MemoryStore) MessageCount(conversationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs[conversationID])
}
