package delivery

import (
	"errors"
	"log/slog"
	"net/http"

	"selkie-backend/internal/djinn/domain"
	djinndto "selkie-backend/internal/djinn/dto"
	"selkie-backend/internal/djinn/usecase"
	"selkie-backend/pkg/middleware"
	"selkie-backend/pkg/upload"

	"github.com/gin-gonic/gin"
)

type DjinnHandler struct {
	djinnUsecase usecase.DjinnUsecase
	logger       *slog.Logger
}

// NewDjinnHandler creates a new instance of DjinnHandler.
func NewDjinnHandler(djinnUsecase usecase.DjinnUsecase, logger *slog.Logger) *DjinnHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DjinnHandler{djinnUsecase: djinnUsecase, logger: logger}
}

// UploadImage stores an image and its metadata.
// POST /api/djinn/images/upload
func (h *DjinnHandler) UploadImage(c *gin.Context) {
	file, closer, err := upload.FromForm(c, "file")
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrMissingFile):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "File is required"})
		case upload.IsTooLarge(err):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "File too large"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		}
		return
	}
	defer closer.Close()

	img, err := h.djinnUsecase.UploadImage(c.Request.Context(), c.GetString(middleware.UserIDKey), c.PostForm("description"), file)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingFile) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "File is required"})
			return
		}
		h.logger.Error("image upload failed", slog.String("filename", file.Filename), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not store image"})
		return
	}

	c.JSON(http.StatusCreated, img)
}

// GetDetections lists the objects detected in an image.
// GET /api/djinn/images/:image_id/detections
func (h *DjinnHandler) GetDetections(c *gin.Context) {
	imageID := c.Param("image_id")
	objects, err := h.djinnUsecase.Detections(c.Request.Context(), imageID)
	if err != nil {
		if errors.Is(err, domain.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Image not found"})
			return
		}
		h.logger.Error("list detections failed", slog.String("image_id", imageID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not retrieve object detections"})
		return
	}

	c.JSON(http.StatusOK, objects)
}

// RecordDetection attaches a detected object to an image.
// POST /api/djinn/images/:image_id/detections
func (h *DjinnHandler) RecordDetection(c *gin.Context) {
	var req djinndto.RecordDetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	obj, err := h.djinnUsecase.RecordDetection(c.Request.Context(), usecase.RecordDetectionInput{
		ImageID:     c.Param("image_id"),
		ObjectClass: req.ObjectClass,
		Confidence:  *req.Confidence,
		BoundingBox: req.BoundingBox,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrImageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "Image not found"})
		case errors.Is(err, domain.ErrInvalidConfidence), errors.Is(err, domain.ErrMissingObjectClass):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		default:
			h.logger.Error("record detection failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not record detection"})
		}
		return
	}

	c.JSON(http.StatusCreated, obj)
}

// DetectMapView runs object detection over a snapshot of the current map view.
// POST /api/djinn/detect_map_view
func (h *DjinnHandler) DetectMapView(c *gin.Context) {
	var req djinndto.MapViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	result, err := h.djinnUsecase.DetectMapView(c.Request.Context(), req.ImageData, *req.Bounds)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidImage) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid or corrupt base64 image data provided."})
			return
		}
		h.logger.Error("map view detection failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Object detection failed."})
		return
	}

	c.JSON(http.StatusOK, result)
}
