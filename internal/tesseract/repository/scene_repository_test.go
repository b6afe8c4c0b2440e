package repository

import (
	"context"
	"testing"
	"time"

	"selkie-backend/internal/tesseract/domain"
	"selkie-backend/pkg/graphdb/graphdbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	db := graphdbtest.NewTransactor()
	name := "harbor"

	err := NewSceneRepository(db).Create(context.Background(), &domain.Scene{
		ID:                  "sc-1",
		Name:                &name,
		FootprintGeoJSON:    map[string]any{"type": "Polygon"},
		SceneDataStorageURI: "minio:b/k",
	})

	require.NoError(t, err)
	p := db.Tx.Calls[0].Params
	assert.Equal(t, "harbor", p["name"])
	assert.Nil(t, p["description"])
	assert.Equal(t, `{"type":"Polygon"}`, p["footprint_geojson"])
	assert.Nil(t, p["reconstruction_parameters"])
}

func TestFindByID(t *testing.T) {
	ts := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db := graphdbtest.NewTransactor(graphdbtest.Rows("s", map[string]any{
			"id":                        "sc-1",
			"timestamp":                 ts,
			"footprint_geojson":         `{"type":"Polygon","coordinates":[]}`,
			"reconstruction_parameters": `{"iterations":30000}`,
			"scene_data_storage_uri":    "minio:b/k",
		}))

		scene, err := NewSceneRepository(db).FindByID(context.Background(), "sc-1")

		require.NoError(t, err)
		require.NotNil(t, scene)
		assert.Equal(t, "Polygon", scene.FootprintGeoJSON["type"])
		assert.Equal(t, 30000.0, scene.ReconstructionParameters["iterations"])
		assert.Equal(t, ts, scene.Timestamp)
		assert.Equal(t, map[string]any{"id": "sc-1"}, db.Tx.Calls[0].Params)
	})

	t.Run("missing", func(t *testing.T) {
		db := graphdbtest.NewTransactor(graphdbtest.Rows("s"))

		scene, err := NewSceneRepository(db).FindByID(context.Background(), "sc-9")

		require.NoError(t, err)
		assert.Nil(t, scene)
	})

	t.Run("corrupt footprint", func(t *testing.T) {
		db := graphdbtest.NewTransactor(graphdbtest.Rows("s", map[string]any{"id": "sc-1", "footprint_geojson": "{bad"}))

		_, err := NewSceneRepository(db).FindByID(context.Background(), "sc-1")

		assert.Error(t, err)
	})
}

func TestList(t *testing.T) {
	db := graphdbtest.NewTransactor(graphdbtest.Rows("s",
		map[string]any{"id": "sc-2"},
		map[string]any{"id": "sc-1"},
	))

	scenes, err := NewSceneRepository(db).List(context.Background(), 10, 5)

	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, "sc-2", scenes[0].ID)
	assert.Equal(t, map[string]any{"skip": 5, "limit": 10}, db.Tx.Calls[0].Params)
}
