package chat

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketgram/service/storage"
	"marketgram/tools/errs"
)

type deliveredEvent struct {
	Type string          `json:"type"`
	Data storage.Message `json:"data"`
}

// recvDelivered pops one queued frame off the client and decodes it as a
// message-delivered event.
func recvDelivered(t *testing.T, c *Client) storage.Message {
	t.Helper()
	select {
	case raw := <-c.Send:
		var ev deliveredEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		require.Equal(t, EventMessageDelivered, ev.Type)
		return ev.Data
	default:
		t.Fatal("expected a queued frame, got none")
		return storage.Message{}
	}
}

func requireNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.Send:
		t.Fatalf("expected no frame, got %s", raw)
	default:
	}
}

// failingStore injects lookup failures after persistence succeeded.
type failingStore struct {
	storage.Store
	failLookup bool
}

func (s *failingStore) GetConversationParticipants(ctx context.Context, conversationID string) ([2]string, error) {
	if s.failLookup {
		return [2]string{}, errs.ErrStorage.WrapMsg("injected")
	}
	return s.Store.GetConversationParticipants(ctx, conversationID)
}

func newPipelineFixture(t *testing.T) (*storage.MemoryStore, *Registry, *Pipeline) {
	t.Helper()
	store := storage.NewMemoryStore()
	store.AddUser(storage.User{ID: "A", Name: "Alice", Email: "alice@example.com"})
	store.AddUser(storage.User{ID: "B", Name: "Bob", Email: "bob@example.com"})
	store.AddConversation("conv1", "A", "B")

	registry := NewRegistry()
	return store, registry, NewPipeline(store, registry)
}

func TestPipelineDeliversToRecipientAndAcksSender(t *testing.T) {
	store, registry, p := newPipelineFixture(t)

	cA := newTestClient("cA")
	cA.Associate("A")
	registry.Associate("A", cA)

	cB := newTestClient("cB")
	cB.Associate("B")
	registry.Associate("B", cB)

	p.Send(context.Background(), cA, "conv1", "A", "hello")

	require.Equal(t, 1, store.MessageCount("conv1"))

	got := recvDelivered(t, cB)
	ack := recvDelivered(t, cA)

	assert.Equal(t, "hello", got.Body)
	assert.Equal(t, "conv1", got.ConversationID)
	assert.Equal(t, "A", got.Sender.ID)
	assert.Equal(t, "Alice", got.Sender.Name)
	assert.NotEmpty(t, got.ID, "persisted id must ride along")
	assert.Equal(t, got.ID, ack.ID, "ack carries the same persisted message")

	requireNoFrame(t, cA)
	requireNoFrame(t, cB)
}

func TestPipelinePersistsWhenRecipientAbsent(t *testing.T) {
	store, registry, p := newPipelineFixture(t)

	cA := newTestClient("cA")
	cA.Associate("A")
	registry.Associate("A", cA)
	// B has no live connection

	p.Send(context.Background(), cA, "conv1", "A", "are you there?")

	require.Equal(t, 1, store.MessageCount("conv1"), "persistence is authoritative, delivery best-effort")

	ack := recvDelivered(t, cA)
	assert.Equal(t, "are you there?", ack.Body)
	requireNoFrame(t, cA)
}

func TestPipelineEmptyBodyIsSilentNoop(t *testing.T) {
	store, registry, p := newPipelineFixture(t)

	cA := newTestClient("cA")
	cA.Associate("A")
	registry.Associate("A", cA)

	for _, body := range []string{"", "   ", "\n\t "} {
		p.Send(context.Background(), cA, "conv1", "A", body)
	}

	assert.Equal(t, 0, store.MessageCount("conv1"))
	requireNoFrame(t, cA)
}

func TestPipelinePersistFailureAbortsFanout(t *testing.T) {
	_, registry, _ := newPipelineFixture(t)

	// a store with no conversations: CreateMessage fails not-found
	empty := storage.NewMemoryStore()
	p := NewPipeline(empty, registry)

	cA := newTestClient("cA")
	cA.Associate("A")
	registry.Associate("A", cA)

	p.Send(context.Background(), cA, "missing", "A", "hello")

	requireNoFrame(t, cA)
}

func TestPipelineLookupFailureSkipsFanoutAndAck(t *testing.T) {
	store, registry, _ := newPipelineFixture(t)
	p := NewPipeline(&failingStore{Store: store, failLookup: true}, registry)

	cA := newTestClient("cA")
	cA.Associate("A")
	registry.Associate("A", cA)

	cB := newTestClient("cB")
	cB.Associate("B")
	registry.Associate("B", cB)

	p.Send(context.Background(), cA, "conv1", "A", "hello")

	// the message stays persisted, but nothing is pushed
	assert.Equal(t, 1, store.MessageCount("conv1"))
	requireNoFrame(t, cA)
	requireNoFrame(t, cB)
}

func TestPipelineRecipientIsTheOtherParticipant(t *testing.T) {
	store, registry, p := newPipelineFixture(t)

	cA := newTestClient("cA")
	cA.Associate("A")
	registry.Associate("A", cA)

	cB := newTestClient("cB")
	cB.Associate("B")
	registry.Associate("B", cB)

	// B sends this time; A must be resolved as the recipient
	p.Send(context.Background(), cB, "conv1", "B", "hi back")

	require.Equal(t, 1, store.MessageCount("conv1"))
	got := recvDelivered(t, cA)
	assert.Equal(t, "B", got.Sender.ID)
	recvDelivered(t, cB) // ack
}
