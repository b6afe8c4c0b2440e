package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"selkie-backend/internal/tesseract/domain"
	"selkie-backend/internal/tesseract/repository"
	"selkie-backend/pkg/metrics"
	"selkie-backend/pkg/objectstore"

	"github.com/google/uuid"
)

const (
	storagePrefix = "tesseract-scenes"

	DefaultListLimit = 100
	MaxListLimit     = 1000
)

var ErrMissingSceneFile = errors.New("scene data file is required")

type TesseractUsecase interface {
	Upload(ctx context.Context, ownerID string, scene *domain.Scene, file objectstore.Object) (*domain.Scene, error)
	Get(ctx context.Context, id string) (*domain.Scene, error)
	List(ctx context.Context, limit, skip int) ([]*domain.Scene, error)
}

type tesseractUsecase struct {
	repo    repository.SceneRepository
	store   objectstore.Store
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewTesseractUsecase creates a new instance of TesseractUsecase. m may be nil.
func NewTesseractUsecase(repo repository.SceneRepository, store objectstore.Store, m *metrics.Collector, logger *slog.Logger) TesseractUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &tesseractUsecase{repo: repo, store: store, metrics: m, logger: logger.With(slog.String("component", "tesseract"))}
}

func (u *tesseractUsecase) Upload(ctx context.Context, ownerID string, scene *domain.Scene, file objectstore.Object) (*domain.Scene, error) {
	if file.Filename == "" || file.Body == nil {
		return nil, ErrMissingSceneFile
	}
	if scene.Timestamp.IsZero() {
		return nil, domain.ErrMissingTimestamp
	}
	if _, err := domain.ParseFootprint(scene.FootprintGeoJSON); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	scene.ID = uuid.New().String()
	scene.OwnerID = ownerID
	scene.CreatedAt = now
	scene.UpdatedAt = now
	if scene.ReconstructionParameters == nil {
		scene.ReconstructionParameters = map[string]any{}
	}

	_, err := objectstore.PutAndRecord(ctx, u.store, storagePrefix, file, func(uri string) error {
		scene.SceneDataStorageURI = uri
		return u.repo.Create(ctx, scene)
	})
	u.metrics.RecordUpload("tesseract", err)
	if err != nil {
		return nil, err
	}

	u.logger.Info("tesseract scene uploaded", slog.String("scene_id", scene.ID), slog.String("storage_uri", scene.SceneDataStorageURI))
	return scene, nil
}

func (u *tesseractUsecase) Get(ctx context.Context, id string) (*domain.Scene, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrSceneNotFound
	}
	scene, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scene == nil {
		return nil, domain.ErrSceneNotFound
	}
	return scene, nil
}

func (u *tesseractUsecase) List(ctx context.Context, limit, skip int) ([]*domain.Scene, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return u.repo.List(ctx, min(limit, MaxListLimit), max(skip, 0))
}
