package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketgram/logger"
	"marketgram/middleware"
	"marketgram/service/storage"
	"marketgram/tools/errs"
)

type ConversationHandler struct {
	store storage.Store
}

func NewConversationHandler(store storage.Store) *ConversationHandler {
	return &ConversationHandler{store: store}
}

type startConversationReq struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}

// conversationView is a conversation shaped for one side: the other
// participant is populated, the caller itself is omitted.
type conversationView struct {
	ID          string       `json:"id"`
	Participant storage.User `json:"participant"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Start finds or creates the two-party conversation between the caller and
// the receiver.
func (h *ConversationHandler) Start(c *gin.Context) {
	var req startConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "receiverId is required"})
		return
	}
	senderID := middleware.UserID(c)

	conv, err := h.store.FindOrCreateConversation(c.Request.Context(), senderID, req.ReceiverID)
	if err != nil {
		logger.Errorf("[conversation] start failed sender=%s receiver=%s err=%v", senderID, req.ReceiverID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error. Please try again later."})
		return
	}
	c.JSON(http.StatusOK, conv)
}

// List returns the caller's conversations with the other participant
// populated.
func (h *ConversationHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	convs, err := h.store.ListConversations(c.Request.Context(), userID)
	if err != nil {
		logger.Errorf("[conversation] list failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	out := make([]conversationView, 0, len(convs))
	for _, conv := range convs {
		otherID := ""
		for _, p := range conv.Participants {
			if p != userID {
				otherID = p
				break
			}
		}
		other, err := h.store.GetUser(c.Request.Context(), otherID)
		if err != nil {
			other = &storage.User{ID: otherID}
		}
		out = append(out, conversationView{
			ID:          conv.ID,
			Participant: *other,
			CreatedAt:   conv.CreatedAt,
			UpdatedAt:   conv.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Messages returns a conversation's messages, rejecting callers that are not
// a participant.
func (h *ConversationHandler) Messages(c *gin.Context) {
	userID := middleware.UserID(c)
	conversationID := c.Param("id")

	participants, err := h.store.GetConversationParticipants(c.Request.Context(), conversationID)
	if err != nil {
		if errs.IsCode(err, errs.CodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Conversation not found"})
			return
		}
		logger.Errorf("[conversation] participants lookup failed conv=%s err=%v", conversationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	if participants[0] != userID && participants[1] != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not Authorized"})
		return
	}

	messages, err := h.store.ListMessages(c.Request.Context(), conversationID)
	if err != nil {
		logger.Errorf("[conversation] messages failed conv=%s err=%v", conversationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	c.JSON(http.StatusOK, messages)
}
