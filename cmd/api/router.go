package api

import (
	"net/http"

	authDelivery "selkie-backend/internal/auth/delivery"
	"selkie-backend/pkg/metrics"
	"selkie-backend/pkg/upload"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	requireUser := authDelivery.AuthMiddleware(h.authUsecase)
	limitUpload := upload.LimitBody(h.config.MaxUploadBytes())

	r.GET("/metrics", gin.WrapH(metrics.Handler(h.gatherer)))

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		authHandler := h.handlers.Auth
		auth := api.Group("/auth")
		{
			if h.authLimiter != nil {
				throttled := auth.Group("", h.authLimiter.Middleware())
				throttled.POST("/register", authHandler.Register)
				throttled.POST("/token", authHandler.Token)
			} else {
				auth.POST("/register", authHandler.Register)
				auth.POST("/token", authHandler.Token)
			}
			auth.GET("/google/login", authHandler.GoogleLogin)
			auth.GET("/google/callback", authHandler.GoogleCallback)
			auth.POST("/logout", authHandler.Logout)
		}

		api.GET("/users/me", requireUser, authHandler.Me)

		kappa := api.Group("/kappa")
		kappa.Use(requireUser)
		{
			kappa.POST("/documents/upload", limitUpload, h.handlers.Kappa.UploadDocument)
			kappa.POST("/documents/search", h.handlers.Kappa.SearchDocuments)
		}

		djinn := api.Group("/djinn")
		djinn.Use(requireUser)
		{
			djinn.POST("/images/upload", limitUpload, h.handlers.Djinn.UploadImage)
			djinn.GET("/images/:image_id/detections", h.handlers.Djinn.GetDetections)
			djinn.POST("/images/:image_id/detections", h.handlers.Djinn.RecordDetection)
			djinn.POST("/detect_map_view", limitUpload, h.handlers.Djinn.DetectMapView)
		}

		ghost := api.Group("/ghost")
		ghost.Use(requireUser)
		{
			ghost.POST("/signals/ingest", limitUpload, h.handlers.Ghost.IngestSignal)
			ghost.GET("/signals", h.handlers.Ghost.ListSignals)
		}

		tesseract := api.Group("/tesseract")
		tesseract.Use(requireUser)
		{
			tesseract.POST("/scenes/upload", limitUpload, h.handlers.Tesseract.UploadScene)
			tesseract.GET("/scenes", h.handlers.Tesseract.ListScenes)
			tesseract.GET("/scenes/:scene_id", h.handlers.Tesseract.GetScene)
		}

		api.GET("/mapdata", requireUser, h.handlers.MapData.GetMapData)
	}
}
