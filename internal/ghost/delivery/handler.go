package delivery

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"selkie-backend/internal/ghost/domain"
	ghostdto "selkie-backend/internal/ghost/dto"
	"selkie-backend/internal/ghost/usecase"
	"selkie-backend/pkg/middleware"
	"selkie-backend/pkg/objectstore"
	"selkie-backend/pkg/upload"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type GhostHandler struct {
	ghostUsecase usecase.GhostUsecase
	logger       *slog.Logger
}

// NewGhostHandler creates a new instance of GhostHandler.
func NewGhostHandler(ghostUsecase usecase.GhostUsecase, logger *slog.Logger) *GhostHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GhostHandler{ghostUsecase: ghostUsecase, logger: logger}
}

// IngestSignal records a signal event. Multipart requests carry the event as
// JSON in the metadata field plus an optional recording_file; plain JSON
// bodies carry the event alone.
// POST /api/ghost/signals/ingest
func (h *GhostHandler) IngestSignal(c *gin.Context) {
	var (
		req       ghostdto.SignalEventCreate
		recording *objectstore.Object
	)

	if c.ContentType() == binding.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
	} else {
		raw := c.PostForm("metadata")
		if raw == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "metadata is required"})
			return
		}
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "metadata is not valid JSON"})
			return
		}
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}

		file, closer, ok, err := upload.Optional(c, "recording_file")
		if err != nil {
			if upload.IsTooLarge(err) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "File too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		if ok {
			defer closer.Close()
			recording = &file
		}
	}

	event, err := h.ghostUsecase.Ingest(c.Request.Context(), c.GetString(middleware.UserIDKey), req.ToDomain(), recording)
	if err != nil {
		if errors.Is(err, domain.ErrMissingTimestamp) || errors.Is(err, domain.ErrInvalidLocation) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		h.logger.Error("signal ingest failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not create signal event"})
		return
	}

	c.JSON(http.StatusCreated, event)
}

// ListSignals returns signal events, newest first.
// GET /api/ghost/signals?skip=&limit=
func (h *GhostHandler) ListSignals(c *gin.Context) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "skip must be an integer"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(usecase.DefaultListLimit)))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "limit must be an integer"})
		return
	}

	events, err := h.ghostUsecase.List(c.Request.Context(), limit, skip)
	if err != nil {
		h.logger.Error("list signals failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not retrieve signal events"})
		return
	}

	c.JSON(http.StatusOK, events)
}
