package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketgram/middleware"
	"marketgram/service/storage"
)

// asUser stands in for the auth middleware in tests.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

func testRouter(store storage.Store, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewConversationHandler(store)
	grp := r.Group("/api/conversations", asUser(userID))
	grp.POST("", h.Start)
	grp.GET("", h.List)
	grp.GET("/:id/messages", h.Messages)
	return r
}

func seededStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	s := storage.NewMemoryStore()
	s.AddUser(storage.User{ID: "A", Name: "Alice", Email: "alice@example.com"})
	s.AddUser(storage.User{ID: "B", Name: "Bob", Email: "bob@example.com"})
	s.AddConversation("conv1", "A", "B")
	return s
}

func TestStartConversationFindOrCreate(t *testing.T) {
	store := seededStore(t)
	r := testRouter(store, "A")

	req := httptest.NewRequest(http.MethodPost, "/api/conversations", strings.NewReader(`{"receiverId":"B"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var conv storage.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
	assert.Equal(t, "conv1", conv.ID, "existing thread is reused, not duplicated")
}

func TestStartConversationRequiresReceiver(t *testing.T) {
	r := testRouter(seededStore(t), "A")

	req := httptest.NewRequest(http.MethodPost, "/api/conversations", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListConversationsPopulatesOtherParticipant(t *testing.T) {
	r := testRouter(seededStore(t), "A")

	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var out []struct {
		ID          string       `json:"id"`
		Participant storage.User `json:"participant"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "conv1", out[0].ID)
	assert.Equal(t, "B", out[0].Participant.ID)
	assert.Equal(t, "Bob", out[0].Participant.Name)
}

func TestMessagesRejectsNonParticipant(t *testing.T) {
	store := seededStore(t)
	store.AddUser(storage.User{ID: "C", Name: "Mallory", Email: "m@example.com"})
	r := testRouter(store, "C")

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/conv1/messages", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMessagesReturnsPopulatedHistory(t *testing.T) {
	store := seededStore(t)
	_, err := store.CreateMessage(context.Background(), "conv1", "A", "hello")
	require.NoError(t, err)
	_, err = store.CreateMessage(context.Background(), "conv1", "B", "hi")
	require.NoError(t, err)

	r := testRouter(store, "B")
	req := httptest.NewRequest(http.MethodGet, "/api/conversations/conv1/messages", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var msgs []storage.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Body)
	assert.Equal(t, "Alice", msgs[0].Sender.Name)
}

func TestMessagesUnknownConversation(t *testing.T) {
	r := testRouter(seededStore(t), "A")

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/nope/messages", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
