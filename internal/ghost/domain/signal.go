package domain

import (
	"errors"
	"time"
)

var (
	ErrMissingTimestamp = errors.New("timestamp is required")
	ErrInvalidLocation  = errors.New("latitude and longitude must both be set and within range")
)

// SignalEvent is one observed RF emission. Only Timestamp is required.
type SignalEvent struct {
	ID                  string         `json:"id"`
	Timestamp           time.Time      `json:"timestamp"`
	Description         *string        `json:"description"`
	SourceInfo          *string        `json:"source_info"`
	FrequencyHz         *float64       `json:"frequency_hz"`
	BandwidthHz         *float64       `json:"bandwidth_hz"`
	ModulationType      *string        `json:"modulation_type"`
	SignalStrengthDB    *float64       `json:"signal_strength_db"`
	Latitude            *float64       `json:"latitude"`
	Longitude           *float64       `json:"longitude"`
	LocationAccuracyM   *float64       `json:"location_accuracy_m"`
	RecordingFilename   *string        `json:"recording_filename"`
	RecordingStorageURI *string        `json:"recording_storage_uri"`
	AdditionalMetadata  map[string]any `json:"additional_metadata"`
	OwnerID             string         `json:"owner_id,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

func (e *SignalEvent) HasLocation() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// Validate checks the fields a client supplies on ingest.
func (e *SignalEvent) Validate() error {
	if e.Timestamp.IsZero() {
		return ErrMissingTimestamp
	}
	if (e.Latitude == nil) != (e.Longitude == nil) {
		return ErrInvalidLocation
	}
	if e.HasLocation() && (*e.Latitude < -90 || *e.Latitude > 90 || *e.Longitude < -180 || *e.Longitude > 180) {
		return ErrInvalidLocation
	}
	return nil
}
