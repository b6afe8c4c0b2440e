package dto

import (
	"time"

	"selkie-backend/internal/tesseract/domain"
)

type SceneCreate struct {
	Name                     *string        `json:"name"`
	Description              *string        `json:"description"`
	Timestamp                *time.Time     `json:"timestamp" binding:"required"`
	FootprintGeoJSON         map[string]any `json:"footprint_geojson" binding:"required"`
	SourceDataDescription    *string        `json:"source_data_description"`
	ReconstructionParameters map[string]any `json:"reconstruction_parameters"`
}

func (r SceneCreate) ToDomain() *domain.Scene {
	scene := &domain.Scene{
		Name:                     r.Name,
		Description:              r.Description,
		FootprintGeoJSON:         r.FootprintGeoJSON,
		SourceDataDescription:    r.SourceDataDescription,
		ReconstructionParameters: r.ReconstructionParameters,
	}
	if r.Timestamp != nil {
		scene.Timestamp = r.Timestamp.UTC()
	}
	return scene
}
