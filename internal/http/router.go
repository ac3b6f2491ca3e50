package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/citizen-signals/backend/internal/ai"
	"github.com/citizen-signals/backend/internal/config"
	"github.com/citizen-signals/backend/internal/directory"
	"github.com/citizen-signals/backend/internal/http/handlers"
	"github.com/citizen-signals/backend/internal/http/middleware"
	"github.com/citizen-signals/backend/internal/media"
	"github.com/citizen-signals/backend/internal/service"

	_ "github.com/citizen-signals/backend/docs"
)

func Router(cfg config.Config, dir *directory.Directory, idx *directory.Index, assistant ai.Assistant, store *media.Store, basePrompt string, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	sessions := service.NewSessionStore()
	h := &handlers.Handler{
		Directory:  dir,
		Index:      idx,
		Assistant:  assistant,
		Media:      store,
		Sessions:   sessions,
		Finalizer:  &service.Finalizer{Directory: dir, Media: store, Sessions: sessions, Logger: logger},
		BasePrompt: basePrompt,
		StagedTTL:  cfg.StagedMediaTTL,
		Validator:  validator.New(),
		Logger:     logger,
	}

	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.POST("/chat", h.Chat)
		api.POST("/media/stage", h.StageMedia)
		api.POST("/filter-organizations", h.FilterOrganizations)
		api.GET("/organizations", h.OrganizationsList)
		api.GET("/locations", h.LocationsList)
		api.GET("/signals", h.SignalsList)
		api.GET("/signals/:id/media", h.SignalMedia)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/media/reap", h.ReapMedia)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
