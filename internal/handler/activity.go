package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/strivetech/homematch/internal/service"
)

// ActivityHandler records property engagement events against the lead.
type ActivityHandler struct {
	chatService *service.ChatService
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(chatService *service.ChatService) *ActivityHandler {
	return &ActivityHandler{chatService: chatService}
}

// ActivityRequest is the body of POST /api/v1/activity.
type ActivityRequest struct {
	SessionID  string `json:"session_id" binding:"required"`
	PropertyID string `json:"property_id" binding:"required"`
	Action     string `json:"action" binding:"required,oneof=view favorite"`
}

// Track handles POST /api/v1/activity.
func (h *ActivityHandler) Track(c *gin.Context) {
	var req ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	h.chatService.LogActivity(c.Request.Context(), req.SessionID, "property_"+req.Action, map[string]interface{}{
		"property_id": req.PropertyID,
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}
