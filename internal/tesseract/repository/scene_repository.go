package repository

import (
	"context"
	"fmt"

	"selkie-backend/internal/tesseract/domain"
	"selkie-backend/pkg/graphdb"
)

type SceneRepository interface {
	Create(ctx context.Context, scene *domain.Scene) error
	// FindByID returns nil, nil when no scene has id.
	FindByID(ctx context.Context, id string) (*domain.Scene, error)
	List(ctx context.Context, limit, skip int) ([]*domain.Scene, error)
}

var SceneSchema = []string{
	"CREATE CONSTRAINT tesseract_scene_id_unique IF NOT EXISTS FOR (s:TesseractScene) REQUIRE s.id IS UNIQUE",
}

const (
	createScene = `CREATE (s:TesseractScene {
	id: $id,
	name: $name,
	description: $description,
	timestamp: $timestamp,
	footprint_geojson: $footprint_geojson,
	source_data_description: $source_data_description,
	reconstruction_parameters: $reconstruction_parameters,
	scene_data_storage_uri: $scene_data_storage_uri,
	owner_id: $owner_id,
	created_at: $created_at,
	updated_at: $updated_at
})`

	findScene = `MATCH (s:TesseractScene {id: $id}) RETURN properties(s) AS s LIMIT 1`

	listScenes = `MATCH (s:TesseractScene)
WITH s ORDER BY s.timestamp DESC SKIP $skip LIMIT $limit
RETURN properties(s) AS s`
)

type sceneRepository struct {
	db graphdb.Transactor
}

// NewSceneRepository creates a new instance of SceneRepository.
func NewSceneRepository(db graphdb.Transactor) SceneRepository {
	return &sceneRepository{db: db}
}

func (r *sceneRepository) Create(ctx context.Context, scene *domain.Scene) error {
	footprint, err := graphdb.EncodeJSON(scene.FootprintGeoJSON)
	if err != nil {
		return fmt.Errorf("encode footprint: %w", err)
	}
	params, err := graphdb.EncodeJSON(scene.ReconstructionParameters)
	if err != nil {
		return fmt.Errorf("encode reconstruction parameters: %w", err)
	}

	_, err = r.db.WithTransaction(ctx, graphdb.WriteAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, createScene, map[string]any{
			"id":                        scene.ID,
			"name":                      optional(scene.Name),
			"description":               optional(scene.Description),
			"timestamp":                 scene.Timestamp,
			"footprint_geojson":         footprint,
			"source_data_description":   optional(scene.SourceDataDescription),
			"reconstruction_parameters": params,
			"scene_data_storage_uri":    scene.SceneDataStorageURI,
			"owner_id":                  graphdb.NullIfEmpty(scene.OwnerID),
			"created_at":                scene.CreatedAt,
			"updated_at":                scene.UpdatedAt,
		})
		if err != nil {
			return err
		}
		_, err = res.Consume(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("create tesseract scene: %w", err)
	}
	return nil
}

func (r *sceneRepository) FindByID(ctx context.Context, id string) (*domain.Scene, error) {
	var scene *domain.Scene
	_, err := r.db.WithTransaction(ctx, graphdb.ReadAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, findScene, map[string]any{"id": id})
		if err != nil {
			return err
		}
		p, err := graphdb.FirstProps(ctx, res, "s")
		if err != nil || p == nil {
			return err
		}
		scene, err = SceneFromProps(p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find tesseract scene %s: %w", id, err)
	}
	return scene, nil
}

func (r *sceneRepository) List(ctx context.Context, limit, skip int) ([]*domain.Scene, error) {
	var out []*domain.Scene
	_, err := r.db.WithTransaction(ctx, graphdb.ReadAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, listScenes, map[string]any{"skip": skip, "limit": limit})
		if err != nil {
			return err
		}
		rows, err := graphdb.CollectProps(ctx, res, "s")
		if err != nil {
			return err
		}
		out = make([]*domain.Scene, 0, len(rows))
		for _, p := range rows {
			scene, err := SceneFromProps(p)
			if err != nil {
				return err
			}
			out = append(out, scene)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tesseract scenes: %w", err)
	}
	return out, nil
}

// SceneFromProps rebuilds a scene from its node properties.
func SceneFromProps(p graphdb.Props) (*domain.Scene, error) {
	scene := &domain.Scene{
		ID:                    p.String("id"),
		Name:                  p.OptionalString("name"),
		Description:           p.OptionalString("description"),
		Timestamp:             p.Time("timestamp"),
		SourceDataDescription: p.OptionalString("source_data_description"),
		SceneDataStorageURI:   p.String("scene_data_storage_uri"),
		OwnerID:               p.String("owner_id"),
		CreatedAt:             p.Time("created_at"),
		UpdatedAt:             p.Time("updated_at"),
	}
	if err := p.JSON("footprint_geojson", &scene.FootprintGeoJSON); err != nil {
		return nil, err
	}
	if err := p.JSON("reconstruction_parameters", &scene.ReconstructionParameters); err != nil {
		return nil, err
	}
	if scene.ReconstructionParameters == nil {
		scene.ReconstructionParameters = map[string]any{}
	}
	return scene, nil
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
