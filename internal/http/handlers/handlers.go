package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/citizen-signals/backend/internal/ai"
	"github.com/citizen-signals/backend/internal/directory"
	"github.com/citizen-signals/backend/internal/media"
	"github.com/citizen-signals/backend/internal/service"
)

type Handler struct {
	Directory  *directory.Directory
	Index      *directory.Index
	Assistant  ai.Assistant
	Media      *media.Store
	Sessions   *service.SessionStore
	Finalizer  *service.Finalizer
	BasePrompt string
	StagedTTL  time.Duration
	Validator  *validator.Validate
	Logger     zerolog.Logger
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":              "Citizen Signals Chat API with Media Upload Support",
		"status":               "running",
		"organizations_loaded": h.Directory.Len(),
		"cities_supported":     h.Index.CityCount(),
		"rayons_supported":     h.Index.RayonCount(),
	})
}

func (h *Handler) Healthz(c *gin.Context) {
	if _, err := os.Stat(h.Media.UploadsDir); err != nil {
		writeError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Uploads directory unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary List all organizations
// @Tags organizations
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/organizations [get]
func (h *Handler) OrganizationsList(c *gin.Context) {
	orgs := h.Directory.Organizations()
	c.JSON(http.StatusOK, gin.H{"organizations": orgs, "count": len(orgs)})
}

// @Summary List known location names
// @Tags locations
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/locations [get]
func (h *Handler) LocationsList(c *gin.Context) {
	cities := h.Index.CityKeys()
	rayons := h.Index.RayonKeys()
	c.JSON(http.StatusOK, gin.H{
		"cities":      cities,
		"rayons":      rayons,
		"city_count":  len(cities),
		"rayon_count": len(rayons),
	})
}

// @Summary List signals with committed media
// @Tags signals
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/signals [get]
func (h *Handler) SignalsList(c *gin.Context) {
	signals, err := h.Media.ListSignals()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to list signals", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": signals, "count": len(signals)})
}

// @Summary List media files of one signal
// @Tags signals
// @Produce json
// @Param id path string true "Signal ID"
// @Success 200 {object} map[string]any
// @Router /api/signals/{id}/media [get]
func (h *Handler) SignalMedia(c *gin.Context) {
	id := c.Param("id")
	files, err := h.Media.SignalMedia(id)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Signal not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to read signal media", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"signal_id": id, "files": files})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
