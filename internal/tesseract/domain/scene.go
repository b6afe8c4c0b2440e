package domain

import (
	"errors"
	"time"
)

var (
	ErrSceneNotFound    = errors.New("tesseract scene not found")
	ErrMissingTimestamp = errors.New("timestamp is required")
)

// Scene is a reconstructed 3D scene. FootprintGeoJSON is its 2D outline on the map.
type Scene struct {
	ID                       string         `json:"id"`
	Name                     *string        `json:"name"`
	Description              *string        `json:"description"`
	Timestamp                time.Time      `json:"timestamp"`
	FootprintGeoJSON         map[string]any `json:"footprint_geojson"`
	SourceDataDescription    *string        `json:"source_data_description"`
	ReconstructionParameters map[string]any `json:"reconstruction_parameters"`
	SceneDataStorageURI      string         `json:"scene_data_storage_uri"`
	OwnerID                  string         `json:"owner_id,omitempty"`
	CreatedAt                time.Time      `json:"created_at"`
	UpdatedAt                time.Time      `json:"updated_at"`
}
