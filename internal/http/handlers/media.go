package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/citizen-signals/backend/internal/media"
)

type StageMediaItem struct {
	Type     string `json:"type" validate:"required,oneof=image video"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data" validate:"required"`
	Size     int    `json:"size"`
}

type StageMediaRequest struct {
	ConversationID string           `json:"conversation_id"`
	Media          []StageMediaItem `json:"media" validate:"required,min=1,dive"`
}

// @Summary Stage uploaded media
// @Description Park uploaded items in the staging store; handles are committed to a signal at finalization
// @Tags media
// @Accept json
// @Produce json
// @Param request body StageMediaRequest true "media batch"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/media/stage [post]
func (h *Handler) StageMedia(c *gin.Context) {
	var req StageMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	items := make([]media.UploadItem, 0, len(req.Media))
	for _, m := range req.Media {
		items = append(items, media.UploadItem{
			Type:     m.Type,
			Filename: m.Filename,
			MimeType: m.MimeType,
			Data:     m.Data,
			Size:     m.Size,
		})
	}

	batchID, descriptors := h.Media.Stage(items)

	if req.ConversationID != "" {
		sess := h.Sessions.Ensure(req.ConversationID)
		ids := make([]string, 0, len(descriptors))
		for _, d := range descriptors {
			ids = append(ids, d.MediaID)
		}
		h.Sessions.AttachMedia(sess.ID, ids)
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_id":     batchID,
		"items":        descriptors,
		"staged_count": len(descriptors),
	})
}

// @Summary Reap expired staged media
// @Description Drop staged items older than the configured retention window
// @Tags media
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/admin/media/reap [post]
func (h *Handler) ReapMedia(c *gin.Context) {
	cutoff := time.Now().UTC().Add(-h.StagedTTL)
	reaped := h.Media.Reap(cutoff)
	h.Logger.Info().Int("reaped", reaped).Time("cutoff", cutoff).Msg("staged media reaped")
	c.JSON(http.StatusOK, gin.H{"reaped": reaped, "remaining": h.Media.StagedCount()})
}
