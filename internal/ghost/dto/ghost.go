package dto

import (
	"time"

	"selkie-backend/internal/ghost/domain"
)

type SignalEventCreate struct {
	Timestamp          *time.Time     `json:"timestamp" binding:"required"`
	Description        *string        `json:"description"`
	SourceInfo         *string        `json:"source_info"`
	FrequencyHz        *float64       `json:"frequency_hz"`
	BandwidthHz        *float64       `json:"bandwidth_hz"`
	ModulationType     *string        `json:"modulation_type"`
	SignalStrengthDB   *float64       `json:"signal_strength_db"`
	Latitude           *float64       `json:"latitude"`
	Longitude          *float64       `json:"longitude"`
	LocationAccuracyM  *float64       `json:"location_accuracy_m"`
	RecordingFilename  *string        `json:"recording_filename"`
	AdditionalMetadata map[string]any `json:"additional_metadata"`
}

func (r SignalEventCreate) ToDomain() *domain.SignalEvent {
	event := &domain.SignalEvent{
		Description:        r.Description,
		SourceInfo:         r.SourceInfo,
		FrequencyHz:        r.FrequencyHz,
		BandwidthHz:        r.BandwidthHz,
		ModulationType:     r.ModulationType,
		SignalStrengthDB:   r.SignalStrengthDB,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		LocationAccuracyM:  r.LocationAccuracyM,
		RecordingFilename:  r.RecordingFilename,
		AdditionalMetadata: r.AdditionalMetadata,
	}
	if r.Timestamp != nil {
		event.Timestamp = r.Timestamp.UTC()
	}
	return event
}
