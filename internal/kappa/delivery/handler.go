package delivery

import (
	"errors"
	"log/slog"
	"net/http"

	kappadto "selkie-backend/internal/kappa/dto"
	"selkie-backend/internal/kappa/usecase"
	"selkie-backend/pkg/middleware"
	"selkie-backend/pkg/upload"

	"github.com/gin-gonic/gin"
)

type KappaHandler struct {
	kappaUsecase usecase.KappaUsecase
	logger       *slog.Logger
}

// NewKappaHandler creates a new instance of KappaHandler.
func NewKappaHandler(kappaUsecase usecase.KappaUsecase, logger *slog.Logger) *KappaHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &KappaHandler{kappaUsecase: kappaUsecase, logger: logger}
}

// UploadDocument stores a document and its metadata.
// POST /api/kappa/documents/upload
func (h *KappaHandler) UploadDocument(c *gin.Context) {
	file, closer, err := upload.FromForm(c, "file")
	if err != nil {
		h.badUpload(c, err)
		return
	}
	defer closer.Close()

	doc, err := h.kappaUsecase.Upload(c.Request.Context(), c.GetString(middleware.UserIDKey), c.PostForm("description"), file)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingFile) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "File is required"})
			return
		}
		h.logger.Error("document upload failed", slog.String("filename", file.Filename), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not store document"})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// SearchDocuments runs a keyword search over document metadata.
// POST /api/kappa/documents/search
func (h *KappaHandler) SearchDocuments(c *gin.Context) {
	var req kappadto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	result, err := h.kappaUsecase.Search(c.Request.Context(), req.Query, req.Limit, req.Skip)
	if err != nil {
		h.logger.Error("document search failed", slog.String("query", req.Query), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not perform document search"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *KappaHandler) badUpload(c *gin.Context, err error) {
	switch {
	case errors.Is(err, upload.ErrMissingFile):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "File is required"})
	case upload.IsTooLarge(err):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "File too large"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	}
}
