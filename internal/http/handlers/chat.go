package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/citizen-signals/backend/internal/directory"
	"github.com/citizen-signals/backend/internal/models"
	"github.com/citizen-signals/backend/internal/service"
)

type ChatRequest struct {
	ConversationID  string                `json:"conversation_id"`
	Messages        []models.ChatMessage  `json:"messages" validate:"required,min=1"`
	LocationContext *models.LocationQuery `json:"location_context"`
	MediaIDs        []string              `json:"media_ids"`
}

// @Summary Conversation turn
// @Description Process one chat turn: filter organizations by location, ask the assistant, finalize the signal when the reply embeds a complete payload
// @Tags chat
// @Accept json
// @Produce json
// @Param request body ChatRequest true "chat turn"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	sess := h.Sessions.Ensure(req.ConversationID)
	if h.Sessions.State(sess.ID) == service.StateSent {
		c.JSON(http.StatusOK, gin.H{
			"conversation_id":    sess.ID,
			"signal_ready":       false,
			"signal_sent":        false,
			"message":            service.MessageAlreadySent,
			"conversation_ended": true,
		})
		return
	}

	h.Sessions.AttachMedia(sess.ID, req.MediaIDs)
	pendingMedia := h.Sessions.PendingMediaCount(sess.ID)

	location := req.LocationContext
	if location == nil {
		location = h.Index.ExtractLocation(req.Messages)
	}

	var filtered []models.Organization
	var system string
	if location != nil {
		filtered = directory.Filter(h.Directory, *location)
		system = service.BuildSystemPrompt(h.BasePrompt, filtered, pendingMedia)
	} else {
		filtered = h.Directory.Organizations()
		system = service.BuildSystemPromptNoLocation(h.BasePrompt, pendingMedia)
	}

	reply, err := h.Assistant.Ask(c.Request.Context(), system, req.Messages)
	if err != nil {
		// Collaborator failure is recoverable: apologize, change nothing.
		h.Logger.Error().Err(err).Str("conversation_id", sess.ID).Msg("assistant call failed")
		c.JSON(http.StatusOK, gin.H{
			"conversation_id": sess.ID,
			"signal_ready":    false,
			"signal_sent":     false,
			"message":         service.MessageApology,
		})
		return
	}

	cand, finalized := service.ExtractCandidate(reply)
	if !finalized {
		resp := gin.H{
			"conversation_id":     sess.ID,
			"signal_ready":        false,
			"signal_sent":         false,
			"message":             reply,
			"pending_media_count": pendingMedia,
		}
		if location != nil {
			resp["filtered_org_count"] = len(filtered)
			resp["location_context"] = location
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	signal, err := h.Finalizer.Finalize(sess.ID, cand)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"conversation_id":    sess.ID,
			"signal_ready":       false,
			"signal_sent":        false,
			"message":            service.MessageAlreadySent,
			"conversation_ended": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id":      sess.ID,
		"signal_ready":         true,
		"signal_sent":          true,
		"signal_data":          signal,
		"message":              service.MessageSignalSent,
		"filtered_org_count":   len(filtered),
		"attached_media_count": len(signal.AttachedMedia),
		"conversation_ended":   true,
	})
}

// @Summary Filter organizations by location
// @Tags organizations
// @Accept json
// @Produce json
// @Param location body models.LocationQuery true "location query"
// @Success 200 {object} map[string]any
// @Router /api/filter-organizations [post]
func (h *Handler) FilterOrganizations(c *gin.Context) {
	var q models.LocationQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	filtered := directory.Filter(h.Directory, q)
	c.JSON(http.StatusOK, gin.H{"count": len(filtered), "organizations": filtered})
}
