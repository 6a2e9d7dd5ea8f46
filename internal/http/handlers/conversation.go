package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/slangify-backend/internal/http/response"
	"github.com/yungbote/slangify-backend/internal/platform/ctxutil"
	"github.com/yungbote/slangify-backend/internal/services"
)

type ConversationHandler struct {
	conversations services.ConversationService
}

func NewConversationHandler(conversations services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

func requireUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func conversationIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/conversations?include_archived=true
func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	includeArchived := strings.EqualFold(c.Query("include_archived"), "true")
	conversations, err := h.conversations.List(c.Request.Context(), userID, includeArchived)
	if err != nil {
		response.RespondServiceError(c, err, "list_conversations_failed")
		return
	}
	response.RespondOK(c, gin.H{"conversations": conversations})
}

// GET /api/conversations/:id/messages?limit=50
func (h *ConversationHandler) Messages(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	conversationID, ok := conversationIDParam(c)
	if !ok {
		return
	}
	limit := 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	messages, err := h.conversations.Messages(c.Request.Context(), userID, conversationID, limit)
	if err != nil {
		response.RespondServiceError(c, err, "list_messages_failed")
		return
	}
	response.RespondOK(c, gin.H{"messages": messages})
}

type renameRequest struct {
	Title string `json:"title"`
}

// PATCH /api/conversations/:id
func (h *ConversationHandler) Rename(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	conversationID, ok := conversationIDParam(c)
	if !ok {
		return
	}
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.conversations.Rename(c.Request.Context(), userID, conversationID, req.Title); err != nil {
		response.RespondServiceError(c, err, "rename_conversation_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type archiveRequest struct {
	Archived bool `json:"archived"`
}

// POST /api/conversations/:id/archive
func (h *ConversationHandler) Archive(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	conversationID, ok := conversationIDParam(c)
	if !ok {
		return
	}
	req := archiveRequest{Archived: true}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	if err := h.conversations.SetArchived(c.Request.Context(), userID, conversationID, req.Archived); err != nil {
		response.RespondServiceError(c, err, "archive_conversation_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /api/conversations/:id
func (h *ConversationHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	conversationID, ok := conversationIDParam(c)
	if !ok {
		return
	}
	if err := h.conversations.Delete(c.Request.Context(), userID, conversationID); err != nil {
		response.RespondServiceError(c, err, "delete_conversation_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
