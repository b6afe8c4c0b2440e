package delivery

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"selkie-backend/internal/tesseract/domain"
	tesseractdto "selkie-backend/internal/tesseract/dto"
	"selkie-backend/internal/tesseract/usecase"
	"selkie-backend/pkg/middleware"
	"selkie-backend/pkg/upload"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type TesseractHandler struct {
	tesseractUsecase usecase.TesseractUsecase
	logger           *slog.Logger
}

// NewTesseractHandler creates a new instance of TesseractHandler.
func NewTesseractHandler(tesseractUsecase usecase.TesseractUsecase, logger *slog.Logger) *TesseractHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractHandler{tesseractUsecase: tesseractUsecase, logger: logger}
}

// UploadScene stores a scene file with its metadata, sent as JSON in the metadata form field.
// POST /api/tesseract/scenes/upload
func (h *TesseractHandler) UploadScene(c *gin.Context) {
	var req tesseractdto.SceneCreate
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

	file, closer, err := upload.FromForm(c, "scene_file")
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrMissingFile):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Scene data file is required."})
		case upload.IsTooLarge(err):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "File too large"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		}
		return
	}
	defer closer.Close()

	scene, err := h.tesseractUsecase.Upload(c.Request.Context(), c.GetString(middleware.UserIDKey), req.ToDomain(), file)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingSceneFile):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Scene data file is required."})
		case errors.Is(err, domain.ErrInvalidFootprint),
			errors.Is(err, domain.ErrMissingFootprint),
			errors.Is(err, domain.ErrMissingTimestamp):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		default:
			h.logger.Error("scene upload failed", slog.String("filename", file.Filename), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not create Tesseract scene"})
		}
		return
	}

	c.JSON(http.StatusCreated, scene)
}

// GetScene returns one scene's metadata.
// GET /api/tesseract/scenes/:scene_id
func (h *TesseractHandler) GetScene(c *gin.Context) {
	id := c.Param("scene_id")
	scene, err := h.tesseractUsecase.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSceneNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Tesseract scene not found"})
			return
		}
		h.logger.Error("get scene failed", slog.String("scene_id", id), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not retrieve Tesseract scene metadata"})
		return
	}

	c.JSON(http.StatusOK, scene)
}

// ListScenes returns scenes, newest first.
// GET /api/tesseract/scenes?skip=&limit=
func (h *TesseractHandler) ListScenes(c *gin.Context) {
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

	scenes, err := h.tesseractUsecase.List(c.Request.Context(), limit, skip)
	if err != nil {
		h.logger.Error("list scenes failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not retrieve Tesseract scenes"})
		return
	}

	c.JSON(http.StatusOK, scenes)
}
