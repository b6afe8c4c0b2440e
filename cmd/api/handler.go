package api

import (
	"log/slog"
	"net/http"
	"time"

	authDelivery "selkie-backend/internal/auth/delivery"
	authUsecase "selkie-backend/internal/auth/usecase"
	djinnDelivery "selkie-backend/internal/djinn/delivery"
	ghostDelivery "selkie-backend/internal/ghost/delivery"
	kappaDelivery "selkie-backend/internal/kappa/delivery"
	mapdataDelivery "selkie-backend/internal/mapdata/delivery"
	tesseractDelivery "selkie-backend/internal/tesseract/delivery"
	"selkie-backend/pkg/config"
	"selkie-backend/pkg/metrics"
	"selkie-backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Handlers groups the per-module HTTP handlers.
type Handlers struct {
	Auth      *authDelivery.AuthHandler
	Kappa     *kappaDelivery.KappaHandler
	Djinn     *djinnDelivery.DjinnHandler
	Ghost     *ghostDelivery.GhostHandler
	Tesseract *tesseractDelivery.TesseractHandler
	MapData   *mapdataDelivery.MapDataHandler
}

type Handler struct {
	authUsecase authUsecase.AuthUsecase
	handlers    Handlers
	authLimiter *middleware.RateLimiter
	metrics     *metrics.Collector
	gatherer    prometheus.Gatherer
	config      *config.Config
	logger      *slog.Logger
}

// NewHandler creates the HTTP entry point over the module handlers.
func NewHandler(
	authUc authUsecase.AuthUsecase,
	handlers Handlers,
	authLimiter *middleware.RateLimiter,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
	cfg *config.Config,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		authUsecase: authUc,
		handlers:    handlers,
		authLimiter: authLimiter,
		metrics:     collector,
		gatherer:    gatherer,
		config:      cfg,
		logger:      logger,
	}
}

// Engine builds the gin engine with the global middleware chain and all routes.
func (h *Handler) Engine() *gin.Engine {
	r := gin.New()

	var observer middleware.HTTPObserver
	if h.metrics != nil {
		observer = h.metrics
	}
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(h.logger, observer),
		middleware.CORS(h.config.CORSAllowedOrigins),
	)

	SetupRoutes(r, h)
	return r
}

// Server returns an http.Server for addr; the caller owns Shutdown.
func (h *Handler) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
