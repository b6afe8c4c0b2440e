package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"selkie-backend/internal/djinn/domain"
	"selkie-backend/internal/djinn/repository"
	"selkie-backend/pkg/metrics"
	"selkie-backend/pkg/objectstore"

	"github.com/google/uuid"
)

const storagePrefix = "djinn-images"

var ErrMissingFile = errors.New("file is required")

type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]domain.RawDetection, error)
}

type RecordDetectionInput struct {
	ImageID     string
	ObjectClass string
	Confidence  float64
	BoundingBox [][2]float64
	Latitude    *float64
	Longitude   *float64
}

type DjinnUsecase interface {
	UploadImage(ctx context.Context, ownerID, description string, file objectstore.Object) (*domain.Image, error)
	Detections(ctx context.Context, imageID string) ([]*domain.DetectedObject, error)
	RecordDetection(ctx context.Context, in RecordDetectionInput) (*domain.DetectedObject, error)
	DetectMapView(ctx context.Context, imageData string, bounds domain.Bounds) (*domain.MapDetectionResult, error)
}

type djinnUsecase struct {
	repo     repository.ImageRepository
	store    objectstore.Store
	detector Detector
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewDjinnUsecase creates a new instance of DjinnUsecase running detector for map views.
func NewDjinnUsecase(repo repository.ImageRepository, store objectstore.Store, detector Detector, m *metrics.Collector, logger *slog.Logger) DjinnUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &djinnUsecase{
		repo:     repo,
		store:    store,
		detector: detector,
		metrics:  m,
		logger:   logger.With(slog.String("component", "djinn")),
	}
}

func (u *djinnUsecase) UploadImage(ctx context.Context, ownerID, description string, file objectstore.Object) (*domain.Image, error) {
	if file.Filename == "" || file.Body == nil {
		return nil, ErrMissingFile
	}

	now := time.Now().UTC()
	img := &domain.Image{
		ID:          uuid.New().String(),
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := objectstore.PutAndRecord(ctx, u.store, storagePrefix, file, func(uri string) error {
		img.StorageURI = uri
		return u.repo.CreateImage(ctx, img)
	})
	u.metrics.RecordUpload("djinn", err)
	if err != nil {
		return nil, err
	}

	u.logger.Info("image uploaded", slog.String("image_id", img.ID), slog.String("storage_uri", img.StorageURI))
	return img, nil
}

func (u *djinnUsecase) Detections(ctx context.Context, imageID string) ([]*domain.DetectedObject, error) {
	if _, err := uuid.Parse(imageID); err != nil {
		return nil, domain.ErrImageNotFound
	}
	return u.repo.Detections(ctx, imageID)
}

func (u *djinnUsecase) RecordDetection(ctx context.Context, in RecordDetectionInput) (*domain.DetectedObject, error) {
	if in.Confidence < 0 || in.Confidence > 1 {
		return nil, domain.ErrInvalidConfidence
	}
	if strings.TrimSpace(in.ObjectClass) == "" {
		return nil, domain.ErrMissingObjectClass
	}

	obj := &domain.DetectedObject{
		ID:          uuid.New().String(),
		ImageID:     in.ImageID,
		ObjectClass: in.ObjectClass,
		Confidence:  in.Confidence,
		BoundingBox: in.BoundingBox,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		CreatedAt:   time.Now().UTC(),
	}
	if err := u.repo.CreateDetection(ctx, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (u *djinnUsecase) DetectMapView(ctx context.Context, imageData string, bounds domain.Bounds) (*domain.MapDetectionResult, error) {
	img, err := DecodeBase64Image(imageData)
	if err != nil {
		return nil, err
	}
	width, height := img.Bounds().Dx(), img.Bounds().Dy()

	raw, err := u.detector.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("object detection: %w", err)
	}

	result := &domain.MapDetectionResult{Detections: make([]domain.MapDetection, 0, len(raw))}
	for _, d := range raw {
		if d.ClassName == "" || len(d.BBox) != 4 {
			u.logger.Debug("skipping incomplete detection", slog.String("class", d.ClassName), slog.Int("bbox_len", len(d.BBox)))
			continue
		}

		cx := (d.BBox[0] + d.BBox[2]) / 2
		cy := (d.BBox[1] + d.BBox[3]) / 2
		loc, err := domain.PixelToGeo(cx, cy, width, height, bounds)
		if err != nil {
			return nil, err
		}

		result.Detections = append(result.Detections, domain.MapDetection{
			ID:         uuid.New().String(),
			ClassName:  d.ClassName,
			Confidence: d.Confidence,
			Location:   loc,
		})
	}
	return result, nil
}
