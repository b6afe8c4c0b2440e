package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	api "selkie-backend/cmd/api"
	authDelivery "selkie-backend/internal/auth/delivery"
	"selkie-backend/internal/auth/password"
	authRepo "selkie-backend/internal/auth/repository"
	"selkie-backend/internal/auth/token"
	authUsecase "selkie-backend/internal/auth/usecase"
	djinnDelivery "selkie-backend/internal/djinn/delivery"
	"selkie-backend/internal/djinn/detector"
	djinnRepo "selkie-backend/internal/djinn/repository"
	djinnUsecase "selkie-backend/internal/djinn/usecase"
	ghostDelivery "selkie-backend/internal/ghost/delivery"
	ghostRepo "selkie-backend/internal/ghost/repository"
	ghostUsecase "selkie-backend/internal/ghost/usecase"
	kappaDelivery "selkie-backend/internal/kappa/delivery"
	kappaRepo "selkie-backend/internal/kappa/repository"
	kappaUsecase "selkie-backend/internal/kappa/usecase"
	mapdataDelivery "selkie-backend/internal/mapdata/delivery"
	mapdataRepo "selkie-backend/internal/mapdata/repository"
	mapdataUsecase "selkie-backend/internal/mapdata/usecase"
	tesseractDelivery "selkie-backend/internal/tesseract/delivery"
	tesseractRepo "selkie-backend/internal/tesseract/repository"
	tesseractUsecase "selkie-backend/internal/tesseract/usecase"
	"selkie-backend/pkg/cache"
	"selkie-backend/pkg/config"
	"selkie-backend/pkg/google"
	"selkie-backend/pkg/graphdb"
	"selkie-backend/pkg/logger"
	"selkie-backend/pkg/metrics"
	"selkie-backend/pkg/middleware"
	"selkie-backend/pkg/objectstore"
	"selkie-backend/pkg/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	serviceName     = "selkie-backend"
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)
	if cfg.UsesDefaultSecret() {
		log.Warn("SECRET_KEY is the development default; set it before deploying")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		log.Warn("tracing disabled", slog.String("error", err.Error()))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// Connect to the graph store and apply constraints
	graph := graphdb.NewManager(graphdb.Config{
		URI:        cfg.Neo4jURI,
		Username:   cfg.Neo4jUser,
		Password:   cfg.Neo4jPassword,
		Database:   cfg.Neo4jDatabase,
		MaxRetries: cfg.Neo4jMaxRetries,
		RetryDelay: cfg.Neo4jRetryDelay,
	}, graphdb.WithLogger(log), graphdb.WithConnectRecorder(collector))
	if _, err := graph.Acquire(ctx); err != nil {
		return err
	}
	schema := slices.Concat(
		authRepo.UserSchema,
		kappaRepo.DocumentSchema,
		djinnRepo.ImageSchema,
		ghostRepo.SignalSchema,
		tesseractRepo.SceneSchema,
	)
	if err := graph.EnsureSchema(ctx, schema...); err != nil {
		return err
	}

	store, err := objectstore.NewMinioStore(objectstore.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucketName,
		UseSSL:    cfg.MinioUseSSL,
	}, log)
	if err != nil {
		return err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}

	states, err := newStateStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	codec, err := token.NewCodec(cfg.SecretKey, cfg.Algorithm, cfg.AccessTokenTTL())
	if err != nil {
		return err
	}
	provider := google.NewProvider(google.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
	})

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(graph)
	documentRepository := kappaRepo.NewDocumentRepository(graph)
	imageRepository := djinnRepo.NewImageRepository(graph)
	signalRepository := ghostRepo.NewSignalRepository(graph)
	sceneRepository := tesseractRepo.NewSceneRepository(graph)
	mapDataRepository := mapdataRepo.NewMapDataRepository(graph, log)

	// Initialize use cases (dependency injection)
	authUc := authUsecase.NewAuthUsecase(userRepository, password.NewHasher(cfg.BcryptCost), codec, provider, states, collector, log)
	kappaUc := kappaUsecase.NewKappaUsecase(documentRepository, store, collector, log)
	djinnUc := djinnUsecase.NewDjinnUsecase(imageRepository, store, detector.Noop{}, collector, log)
	ghostUc := ghostUsecase.NewGhostUsecase(signalRepository, store, collector, log)
	tesseractUc := tesseractUsecase.NewTesseractUsecase(sceneRepository, store, collector, log)
	mapDataUc := mapdataUsecase.NewMapDataUsecase(mapDataRepository, log)

	handlers := api.Handlers{
		Auth: authDelivery.NewAuthHandler(authUc, authDelivery.CookieConfig{
			Secure:      cfg.CookieSecure,
			MaxAge:      cfg.AccessTokenTTL(),
			FrontendURL: cfg.FrontendURL,
		}, log),
		Kappa:     kappaDelivery.NewKappaHandler(kappaUc, log),
		Djinn:     djinnDelivery.NewDjinnHandler(djinnUc, log),
		Ghost:     ghostDelivery.NewGhostHandler(ghostUc, log),
		Tesseract: tesseractDelivery.NewTesseractHandler(tesseractUc, log),
		MapData:   mapdataDelivery.NewMapDataHandler(mapDataUc, log),
	}

	authLimiter := middleware.NewRateLimiter(
		middleware.PerMinute(cfg.AuthRateLimitPerMinute),
		middleware.WithRateLimitLogger(log.With(slog.String("component", "ratelimit"))),
	)
	defer authLimiter.Stop()

	handler := api.NewHandler(authUc, handlers, authLimiter, collector, reg, cfg, log)
	server := handler.Server(":" + cfg.Port)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", slog.String("error", err.Error()))
	}
	if err := graph.Shutdown(shutdownCtx); err != nil {
		log.Error("graph shutdown", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown", slog.String("error", err.Error()))
	}
	return nil
}

// newStateStore returns the Redis-backed store when REDIS_ADDR is set.
func newStateStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (authRepo.StateStore, error) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, keeping OAuth state in memory")
		return authRepo.NewMemoryStateStore(), nil
	}
	client, err := cache.Connect(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	return authRepo.NewRedisStateStore(client), nil
}
