package delivery

import (
	"log/slog"
	"net/http"

	"selkie-backend/internal/mapdata/usecase"

	"github.com/gin-gonic/gin"
)

type MapDataHandler struct {
	mapDataUsecase usecase.MapDataUsecase
	logger         *slog.Logger
}

// NewMapDataHandler creates a new instance of MapDataHandler.
func NewMapDataHandler(mapDataUsecase usecase.MapDataUsecase, logger *slog.Logger) *MapDataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MapDataHandler{mapDataUsecase: mapDataUsecase, logger: logger}
}

// GetMapData returns markers and scene footprints for the shared map.
// GET /api/mapdata
func (h *MapDataHandler) GetMapData(c *gin.Context) {
	data, err := h.mapDataUsecase.Collect(c.Request.Context())
	if err != nil {
		h.logger.Error("collect map data failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not retrieve map data"})
		return
	}
	c.JSON(http.StatusOK, data)
}
