package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"selkie-backend/internal/kappa/domain"
	"selkie-backend/internal/kappa/repository"
	"selkie-backend/pkg/metrics"
	"selkie-backend/pkg/objectstore"

	"github.com/google/uuid"
)

const (
	storagePrefix = "kappa-documents"

	DefaultSearchLimit = 10
	MaxSearchLimit     = 100
)

var ErrMissingFile = errors.New("file is required")

type KappaUsecase interface {
	Upload(ctx context.Context, ownerID, description string, file objectstore.Object) (*domain.Document, error)
	Search(ctx context.Context, query string, limit, skip int) (*domain.SearchResult, error)
}

type kappaUsecase struct {
	repo    repository.DocumentRepository
	store   objectstore.Store
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewKappaUsecase creates a new instance of KappaUsecase. m may be nil.
func NewKappaUsecase(repo repository.DocumentRepository, store objectstore.Store, m *metrics.Collector, logger *slog.Logger) KappaUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &kappaUsecase{repo: repo, store: store, metrics: m, logger: logger.With(slog.String("component", "kappa"))}
}

func (u *kappaUsecase) Upload(ctx context.Context, ownerID, description string, file objectstore.Object) (*domain.Document, error) {
	if file.Filename == "" || file.Body == nil {
		return nil, ErrMissingFile
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          uuid.New().String(),
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := objectstore.PutAndRecord(ctx, u.store, storagePrefix, file, func(uri string) error {
		doc.StorageURI = uri
		return u.repo.Create(ctx, doc)
	})
	u.metrics.RecordUpload("kappa", err)
	if err != nil {
		return nil, err
	}

	u.logger.Info("document uploaded", slog.String("document_id", doc.ID), slog.String("storage_uri", doc.StorageURI))
	return doc, nil
}

func (u *kappaUsecase) Search(ctx context.Context, query string, limit, skip int) (*domain.SearchResult, error) {
	limit, skip = NormalizePage(limit, skip, DefaultSearchLimit, MaxSearchLimit)

	docs, total, err := u.repo.Search(ctx, strings.TrimSpace(query), limit, skip)
	if err != nil {
		return nil, err
	}
	return &domain.SearchResult{Results: docs, TotalCount: total}, nil
}

// NormalizePage applies the default for a non-positive limit, caps it at max and floors skip at 0.
func NormalizePage(limit, skip, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}
