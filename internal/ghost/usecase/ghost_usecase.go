package usecase

import (
	"context"
	"log/slog"
	"time"

	"selkie-backend/internal/ghost/domain"
	"selkie-backend/internal/ghost/repository"
	"selkie-backend/pkg/metrics"
	"selkie-backend/pkg/objectstore"

	"github.com/google/uuid"
)

const (
	storagePrefix = "ghost-recordings"

	DefaultListLimit = 100
	MaxListLimit     = 1000
)

type GhostUsecase interface {
	// Ingest stores event and, when recording is non-nil, the recording it refers to.
	Ingest(ctx context.Context, ownerID string, event *domain.SignalEvent, recording *objectstore.Object) (*domain.SignalEvent, error)
	List(ctx context.Context, limit, skip int) ([]*domain.SignalEvent, error)
}

type ghostUsecase struct {
	repo    repository.SignalRepository
	store   objectstore.Store
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewGhostUsecase creates a new instance of GhostUsecase. m may be nil.
func NewGhostUsecase(repo repository.SignalRepository, store objectstore.Store, m *metrics.Collector, logger *slog.Logger) GhostUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ghostUsecase{repo: repo, store: store, metrics: m, logger: logger.With(slog.String("component", "ghost"))}
}

func (u *ghostUsecase) Ingest(ctx context.Context, ownerID string, event *domain.SignalEvent, recording *objectstore.Object) (*domain.SignalEvent, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	event.ID = uuid.New().String()
	event.OwnerID = ownerID
	event.CreatedAt = time.Now().UTC()
	event.RecordingStorageURI = nil
	if event.AdditionalMetadata == nil {
		event.AdditionalMetadata = map[string]any{}
	}

	if recording == nil {
		if err := u.repo.Create(ctx, event); err != nil {
			return nil, err
		}
		u.logger.Info("signal event ingested", slog.String("event_id", event.ID))
		return event, nil
	}

	if event.RecordingFilename == nil || *event.RecordingFilename == "" {
		name := recording.Filename
		event.RecordingFilename = &name
	}
	_, err := objectstore.PutAndRecord(ctx, u.store, storagePrefix, *recording, func(uri string) error {
		event.RecordingStorageURI = &uri
		return u.repo.Create(ctx, event)
	})
	u.metrics.RecordUpload("ghost", err)
	if err != nil {
		return nil, err
	}

	u.logger.Info("signal event ingested with recording",
		slog.String("event_id", event.ID),
		slog.String("storage_uri", *event.RecordingStorageURI),
	)
	return event, nil
}

func (u *ghostUsecase) List(ctx context.Context, limit, skip int) ([]*domain.SignalEvent, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	skip = max(skip, 0)
	return u.repo.List(ctx, limit, skip)
}
