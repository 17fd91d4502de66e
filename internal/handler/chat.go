package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/strivetech/homematch/internal/model"
	"github.com/strivetech/homematch/internal/service"
)

// ChatHandler exposes the chat turn pipeline over HTTP.
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// TurnRequest is the body of POST /api/v1/chat/turn and its stream variant.
type TurnRequest struct {
	SessionID string          `json:"session_id" binding:"required"`
	Message   string          `json:"message" binding:"required"`
	History   []model.Message `json:"history"`
}

// SearchRequest is the body of POST /api/v1/chat/search.
type SearchRequest struct {
	SessionID         string `json:"session_id" binding:"required"`
	AssistantResponse string `json:"assistant_response"`
}

// Turn handles POST /api/v1/chat/turn.
func (h *ChatHandler) Turn(c *gin.Context) {
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.chatService.ProcessTurn(c.Request.Context(), req.SessionID, req.Message, req.History)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Turn processing failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// TurnStream handles POST /api/v1/chat/turn/stream - the same pipeline with
// progress delivered as SSE data payloads, terminated by [DONE].
func (h *ChatHandler) TurnStream(c *gin.Context) {
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	result, err := h.chatService.ProcessTurn(c.Request.Context(), req.SessionID, req.Message, req.History)
	if err != nil {
		sendData(c, gin.H{"type": "error", "error": "Turn processing failed"})
		flusher.Flush()
		sendDone(c)
		flusher.Flush()
		return
	}

	sendData(c, gin.H{
		"type":             "extraction",
		"extracted_fields": result.Extraction.ExtractedFields,
		"confidence":       result.Extraction.Confidence,
		"source":           result.Extraction.Source,
	})
	flusher.Flush()

	sendData(c, gin.H{
		"type":            "state",
		"preferences":     result.Preferences,
		"ready_to_search": result.ReadyToSearch,
		"missing_fields":  result.MissingFields,
	})
	flusher.Flush()

	if result.Event != nil {
		sendData(c, result.Event)
		flusher.Flush()
	}

	sendDone(c)
	flusher.Flush()
}

// Search handles POST /api/v1/chat/search: it honors an in-band
// <property_search> block in the assistant's response, falling back to the
// session's accumulated parameters when the gate is ready.
func (h *ChatHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if params, ok := h.chatService.ParseSearchTrigger(req.AssistantResponse); ok {
		c.JSON(http.StatusOK, h.chatService.RunSearch(c.Request.Context(), *params))
		return
	}

	event, ok, err := h.chatService.SearchForSession(c.Request.Context(), req.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "Not enough information to search yet"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// sendData writes one SSE data payload.
func sendData(c *gin.Context, data any) {
	encoded, err := json.Marshal(data)
	if err != nil {
		fmt.Fprint(c.Writer, "data: {\"type\":\"error\",\"error\":\"encoding failed\"}\n\n")
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", encoded)
}

// sendDone terminates an SSE stream.
func sendDone(c *gin.Context) {
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
}
