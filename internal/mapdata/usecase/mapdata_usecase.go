package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	djinndomain "selkie-backend/internal/djinn/domain"
	ghostdomain "selkie-backend/internal/ghost/domain"
	"selkie-backend/internal/mapdata/domain"
	"selkie-backend/internal/mapdata/repository"
	tesseractdomain "selkie-backend/internal/tesseract/domain"

	"github.com/paulmach/orb/geojson"
)

// MaxItemsPerSource caps each layer so the map payload stays bounded.
const MaxItemsPerSource = 500

type MapDataUsecase interface {
	Collect(ctx context.Context) (*domain.MapData, error)
}

type mapDataUsecase struct {
	repo   repository.MapDataRepository
	logger *slog.Logger
}

// NewMapDataUsecase creates a new instance of MapDataUsecase.
func NewMapDataUsecase(repo repository.MapDataRepository, logger *slog.Logger) MapDataUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &mapDataUsecase{repo: repo, logger: logger.With(slog.String("component", "mapdata"))}
}

func (u *mapDataUsecase) Collect(ctx context.Context) (*domain.MapData, error) {
	signals, err := u.repo.LocatedSignals(ctx, MaxItemsPerSource)
	if err != nil {
		return nil, err
	}
	detections, err := u.repo.LocatedDetections(ctx, MaxItemsPerSource)
	if err != nil {
		return nil, err
	}
	scenes, err := u.repo.SceneFootprints(ctx, MaxItemsPerSource)
	if err != nil {
		return nil, err
	}

	data := &domain.MapData{
		Markers:    make([]domain.Marker, 0, len(signals)+len(detections)),
		Footprints: make([]*geojson.Feature, 0, len(scenes)),
	}
	for _, s := range signals {
		if s.HasLocation() {
			data.Markers = append(data.Markers, signalMarker(s))
		}
	}
	for _, d := range detections {
		if d.HasLocation() {
			data.Markers = append(data.Markers, detectionMarker(d))
		}
	}
	for _, sc := range scenes {
		f, err := footprintFeature(sc)
		if err != nil {
			// Unparseable stored footprints are skipped.
			u.logger.Warn("skipping scene footprint", slog.String("scene_id", sc.ID), slog.String("error", err.Error()))
			continue
		}
		data.Footprints = append(data.Footprints, f)
	}
	return data, nil
}

func signalMarker(s *ghostdomain.SignalEvent) domain.Marker {
	parts := []string{"Signal"}
	if s.FrequencyHz != nil {
		parts = append(parts, formatFrequency(*s.FrequencyHz))
	}
	if s.ModulationType != nil && *s.ModulationType != "" {
		parts = append(parts, *s.ModulationType)
	}
	popup := strings.Join(parts, " ")
	if s.Description != nil && *s.Description != "" {
		popup += ": " + *s.Description
	}
	return domain.Marker{
		ID:           s.ID,
		Position:     [2]float64{*s.Latitude, *s.Longitude},
		PopupContent: popup,
		Source:       domain.SourceGhost,
	}
}

func detectionMarker(d *djinndomain.DetectedObject) domain.Marker {
	return domain.Marker{
		ID:           d.ID,
		Position:     [2]float64{*d.Latitude, *d.Longitude},
		PopupContent: fmt.Sprintf("Detected %s (%.0f%%)", d.ObjectClass, d.Confidence*100),
		Source:       domain.SourceDjinn,
	}
}

func footprintFeature(sc *tesseractdomain.Scene) (*geojson.Feature, error) {
	geom, err := tesseractdomain.ParseFootprint(sc.FootprintGeoJSON)
	if err != nil {
		return nil, err
	}
	f := geojson.NewFeature(geom)
	f.Properties["scene_id"] = sc.ID
	f.Properties["source"] = domain.SourceTesseract
	if sc.Name != nil {
		f.Properties["name"] = *sc.Name
	}
	return f, nil
}

func formatFrequency(hz float64) string {
	switch {
	case hz >= 1e9:
		return strconv.FormatFloat(hz/1e9, 'f', -1, 64) + " GHz"
	case hz >= 1e6:
		return strconv.FormatFloat(hz/1e6, 'f', -1, 64) + " MHz"
	case hz >= 1e3:
		return strconv.FormatFloat(hz/1e3, 'f', -1, 64) + " kHz"
	default:
		return strconv.FormatFloat(hz, 'f', -1, 64) + " Hz"
	}
}
