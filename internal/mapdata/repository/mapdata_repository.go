package repository

import (
	"context"
	"fmt"
	"log/slog"

	djinndomain "selkie-backend/internal/djinn/domain"
	djinnrepo "selkie-backend/internal/djinn/repository"
	ghostdomain "selkie-backend/internal/ghost/domain"
	ghostrepo "selkie-backend/internal/ghost/repository"
	tesseractdomain "selkie-backend/internal/tesseract/domain"
	tesseractrepo "selkie-backend/internal/tesseract/repository"
	"selkie-backend/pkg/graphdb"
)

// MapDataRepository reads the located content of every module for the shared map.
type MapDataRepository interface {
	LocatedSignals(ctx context.Context, limit int) ([]*ghostdomain.SignalEvent, error)
	LocatedDetections(ctx context.Context, limit int) ([]*djinndomain.DetectedObject, error)
	SceneFootprints(ctx context.Context, limit int) ([]*tesseractdomain.Scene, error)
}

const (
	locatedSignals = `MATCH (s:SignalEvent)
WHERE s.latitude IS NOT NULL AND s.longitude IS NOT NULL
WITH s ORDER BY s.timestamp DESC LIMIT $limit
RETURN properties(s) AS s`

	locatedDetections = `MATCH (o:DetectedObject)
WHERE o.latitude IS NOT NULL AND o.longitude IS NOT NULL
WITH o ORDER BY o.created_at DESC LIMIT $limit
RETURN properties(o) AS o`

	sceneFootprints = `MATCH (s:TesseractScene)
WHERE s.footprint_geojson IS NOT NULL
WITH s ORDER BY s.timestamp DESC LIMIT $limit
RETURN properties(s) AS s`
)

type mapDataRepository struct {
	db     graphdb.Transactor
	logger *slog.Logger
}

// NewMapDataRepository creates a read-only repository over every module's located nodes.
func NewMapDataRepository(db graphdb.Transactor, logger *slog.Logger) MapDataRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &mapDataRepository{db: db, logger: logger.With(slog.String("component", "mapdata"))}
}

func (r *mapDataRepository) LocatedSignals(ctx context.Context, limit int) ([]*ghostdomain.SignalEvent, error) {
	return readAll(ctx, r, locatedSignals, "s", limit, ghostrepo.SignalFromProps)
}

func (r *mapDataRepository) LocatedDetections(ctx context.Context, limit int) ([]*djinndomain.DetectedObject, error) {
	return readAll(ctx, r, locatedDetections, "o", limit, djinnrepo.DetectedObjectFromProps)
}

func (r *mapDataRepository) SceneFootprints(ctx context.Context, limit int) ([]*tesseractdomain.Scene, error) {
	return readAll(ctx, r, sceneFootprints, "s", limit, tesseractrepo.SceneFromProps)
}

// readAll skips rows that fail to decode so one bad node cannot hide the map.
func readAll[T any](ctx context.Context, r *mapDataRepository, cypher, key string, limit int, decode func(graphdb.Props) (T, error)) ([]T, error) {
	var out []T
	_, err := r.db.WithTransaction(ctx, graphdb.ReadAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, cypher, map[string]any{"limit": limit})
		if err != nil {
			return err
		}
		rows, err := graphdb.CollectProps(ctx, res, key)
		if err != nil {
			return err
		}
		out = make([]T, 0, len(rows))
		for _, p := range rows {
			v, err := decode(p)
			if err != nil {
				r.logger.Warn("skipping undecodable map node",
					slog.String("kind", key),
					slog.String("id", p.String("id")),
					slog.String("error", err.Error()),
				)
				continue
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read map %s: %w", key, err)
	}
	return out, nil
}
