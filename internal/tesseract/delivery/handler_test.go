package delivery

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"selkie-backend/internal/tesseract/domain"
	"selkie-backend/pkg/objectstore"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockTesseractUsecase struct {
	uploadFn func(ctx context.Context, ownerID string, scene *domain.Scene, file objectstore.Object) (*domain.Scene, error)
	getFn    func(ctx context.Context, id string) (*domain.Scene, error)
	listFn   func(ctx context.Context, limit, skip int) ([]*domain.Scene, error)
}

func (m *mockTesseractUsecase) Upload(ctx context.Context, ownerID string, scene *domain.Scene, file objectstore.Object) (*domain.Scene, error) {
	return m.uploadFn(ctx, ownerID, scene, file)
}

func (m *mockTesseractUsecase) Get(ctx context.Context, id string) (*domain.Scene, error) {
	return m.getFn(ctx, id)
}

func (m *mockTesseractUsecase) List(ctx context.Context, limit, skip int) ([]*domain.Scene, error) {
	return m.listFn(ctx, limit, skip)
}

func newRouter(uc *mockTesseractUsecase) *gin.Engine {
	h := NewTesseractHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := gin.New()
	r.POST("/api/tesseract/scenes/upload", h.UploadScene)
	r.GET("/api/tesseract/scenes", h.ListScenes)
	r.GET("/api/tesseract/scenes/:scene_id", h.GetScene)
	return r
}

const validMetadata = `{"name":"harbor","timestamp":"2024-07-01T00:00:00Z","footprint_geojson":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}`

func sceneRequest(t *testing.T, metadata string, withFile bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if metadata != "" {
		require.NoError(t, mw.WriteField("metadata", metadata))
	}
	if withFile {
		fw, err := mw.CreateFormFile("scene_file", "harbor.splat")
		require.NoError(t, err)
		_, _ = fw.Write([]byte("splat"))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/tesseract/scenes/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadScene(t *testing.T) {
	uc := &mockTesseractUsecase{
		uploadFn: func(ctx context.Context, ownerID string, scene *domain.Scene, file objectstore.Object) (*domain.Scene, error) {
			assert.Equal(t, "harbor.splat", file.Filename)
			require.NotNil(t, scene.Name)
			assert.Equal(t, "harbor", *scene.Name)
			assert.Equal(t, "Polygon", scene.FootprintGeoJSON["type"])
			scene.ID = "sc-1"
			scene.SceneDataStorageURI = "minio:b/k"
			return scene, nil
		},
	}

	w := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(w, sceneRequest(t, validMetadata, true))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"scene_data_storage_uri":"minio:b/k"`)
}

func TestUploadScene_Rejects(t *testing.T) {
	uc := &mockTesseractUsecase{
		uploadFn: func(ctx context.Context, ownerID string, scene *domain.Scene, file objectstore.Object) (*domain.Scene, error) {
			return nil, domain.ErrInvalidFootprint
		},
	}
	r := newRouter(uc)

	tests := []struct {
		name     string
		metadata string
		withFile bool
		want     int
	}{
		{name: "missing file", metadata: validMetadata, withFile: false, want: http.StatusBadRequest},
		{name: "missing metadata", metadata: "", withFile: true, want: http.StatusUnprocessableEntity},
		{name: "missing footprint", metadata: `{"timestamp":"2024-07-01T00:00:00Z"}`, withFile: true, want: http.StatusUnprocessableEntity},
		{name: "bad footprint", metadata: validMetadata, withFile: true, want: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, sceneRequest(t, tt.metadata, tt.withFile))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestGetScene(t *testing.T) {
	uc := &mockTesseractUsecase{
		getFn: func(ctx context.Context, id string) (*domain.Scene, error) {
			if id == "sc-1" {
				return &domain.Scene{ID: "sc-1"}, nil
			}
			return nil, domain.ErrSceneNotFound
		},
	}
	r := newRouter(uc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tesseract/scenes/sc-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tesseract/scenes/sc-2", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Tesseract scene not found")
}

func TestListScenes(t *testing.T) {
	uc := &mockTesseractUsecase{
		listFn: func(ctx context.Context, limit, skip int) ([]*domain.Scene, error) {
			assert.Equal(t, 100, limit)
			return []*domain.Scene{{ID: "sc-1"}, {ID: "sc-2"}}, nil
		},
	}

	w := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tesseract/scenes", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"sc-2"`)
}
