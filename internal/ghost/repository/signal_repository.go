package repository

import (
	"context"
	"fmt"

	"selkie-backend/internal/ghost/domain"
	"selkie-backend/pkg/graphdb"
)

type SignalRepository interface {
	Create(ctx context.Context, event *domain.SignalEvent) error
	// List returns events newest first by observation time.
	List(ctx context.Context, limit, skip int) ([]*domain.SignalEvent, error)
}

var SignalSchema = []string{
	"CREATE CONSTRAINT signal_event_id_unique IF NOT EXISTS FOR (s:SignalEvent) REQUIRE s.id IS UNIQUE",
}

const (
	createSignal = `CREATE (s:SignalEvent {
	id: $id,
	timestamp: $timestamp,
	description: $description,
	source_info: $source_info,
	frequency_hz: $frequency_hz,
	bandwidth_hz: $bandwidth_hz,
	modulation_type: $modulation_type,
	signal_strength_db: $signal_strength_db,
	latitude: $latitude,
	longitude: $longitude,
	location_accuracy_m: $location_accuracy_m,
	recording_filename: $recording_filename,
	recording_storage_uri: $recording_storage_uri,
	additional_metadata: $additional_metadata,
	owner_id: $owner_id,
	created_at: $created_at
})`

	listSignals = `MATCH (s:SignalEvent)
WITH s ORDER BY s.timestamp DESC SKIP $skip LIMIT $limit
RETURN properties(s) AS s`
)

type signalRepository struct {
	db graphdb.Transactor
}

// NewSignalRepository creates a new instance of SignalRepository.
func NewSignalRepository(db graphdb.Transactor) SignalRepository {
	return &signalRepository{db: db}
}

func (r *signalRepository) Create(ctx context.Context, event *domain.SignalEvent) error {
	meta, err := graphdb.EncodeJSON(event.AdditionalMetadata)
	if err != nil {
		return fmt.Errorf("encode additional metadata: %w", err)
	}

	_, err = r.db.WithTransaction(ctx, graphdb.WriteAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, createSignal, map[string]any{
			"id":                    event.ID,
			"timestamp":             event.Timestamp,
			"description":           optional(event.Description),
			"source_info":           optional(event.SourceInfo),
			"frequency_hz":          graphdb.NullIfNil(event.FrequencyHz),
			"bandwidth_hz":          graphdb.NullIfNil(event.BandwidthHz),
			"modulation_type":       optional(event.ModulationType),
			"signal_strength_db":    graphdb.NullIfNil(event.SignalStrengthDB),
			"latitude":              graphdb.NullIfNil(event.Latitude),
			"longitude":             graphdb.NullIfNil(event.Longitude),
			"location_accuracy_m":   graphdb.NullIfNil(event.LocationAccuracyM),
			"recording_filename":    optional(event.RecordingFilename),
			"recording_storage_uri": optional(event.RecordingStorageURI),
			"additional_metadata":   meta,
			"owner_id":              graphdb.NullIfEmpty(event.OwnerID),
			"created_at":            event.CreatedAt,
		})
		if err != nil {
			return err
		}
		_, err = res.Consume(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("create signal event: %w", err)
	}
	return nil
}

func (r *signalRepository) List(ctx context.Context, limit, skip int) ([]*domain.SignalEvent, error) {
	var out []*domain.SignalEvent
	_, err := r.db.WithTransaction(ctx, graphdb.ReadAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, listSignals, map[string]any{"skip": skip, "limit": limit})
		if err != nil {
			return err
		}
		rows, err := graphdb.CollectProps(ctx, res, "s")
		if err != nil {
			return err
		}
		out = make([]*domain.SignalEvent, 0, len(rows))
		for _, p := range rows {
			event, err := SignalFromProps(p)
			if err != nil {
				return err
			}
			out = append(out, event)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list signal events: %w", err)
	}
	return out, nil
}

// SignalFromProps rebuilds a signal event from its node properties.
func SignalFromProps(p graphdb.Props) (*domain.SignalEvent, error) {
	event := &domain.SignalEvent{
		ID:                  p.String("id"),
		Timestamp:           p.Time("timestamp"),
		Description:         p.OptionalString("description"),
		SourceInfo:          p.OptionalString("source_info"),
		FrequencyHz:         p.FloatPtr("frequency_hz"),
		BandwidthHz:         p.FloatPtr("bandwidth_hz"),
		ModulationType:      p.OptionalString("modulation_type"),
		SignalStrengthDB:    p.FloatPtr("signal_strength_db"),
		Latitude:            p.FloatPtr("latitude"),
		Longitude:           p.FloatPtr("longitude"),
		LocationAccuracyM:   p.FloatPtr("location_accuracy_m"),
		RecordingFilename:   p.OptionalString("recording_filename"),
		RecordingStorageURI: p.OptionalString("recording_storage_uri"),
		OwnerID:             p.String("owner_id"),
		CreatedAt:           p.Time("created_at"),
	}
	if err := p.JSON("additional_metadata", &event.AdditionalMetadata); err != nil {
		return nil, err
	}
	if event.AdditionalMetadata == nil {
		event.AdditionalMetadata = map[string]any{}
	}
	return event, nil
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
