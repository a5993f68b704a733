package conversation

import (
	"github.com/gin-gonic/gin"

	"marketgram/module/conversation/handler"
	"marketgram/service/storage"
)

// RegisterRoutes mounts the conversation REST surface under /api. The auth
// middleware must populate the authenticated user id.
func RegisterRoutes(r *gin.Engine, store storage.Store, auth gin.HandlerFunc) {
	h := handler.NewConversationHandler(store)

	grp := r.Group("/api/conversations", auth)
	grp.POST("", h.Start)
	grp.GET("", h.List)
	grp.GET("/:id/messages", h.Messages)
}
