package delivery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"selkie-backend/internal/mapdata/domain"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockMapDataUsecase struct {
	collectFn func(ctx context.Context) (*domain.MapData, error)
}

func (m *mockMapDataUsecase) Collect(ctx context.Context) (*domain.MapData, error) {
	return m.collectFn(ctx)
}

func serve(uc *mockMapDataUsecase) *httptest.ResponseRecorder {
	h := NewMapDataHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := gin.New()
	r.GET("/api/mapdata", h.GetMapData)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/mapdata", nil))
	return w
}

func TestGetMapData(t *testing.T) {
	w := serve(&mockMapDataUsecase{
		collectFn: func(ctx context.Context) (*domain.MapData, error) {
			return &domain.MapData{
				Markers:    []domain.Marker{{ID: "s-1", Position: [2]float64{1, 2}, PopupContent: "Signal", Source: domain.SourceGhost}},
				Footprints: []*geojson.Feature{},
			}, nil
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"markers":[{"id":"s-1","position":[1,2],"popupContent":"Signal","source":"ghost"}],"footprints":[]}`, w.Body.String())
}

func TestGetMapData_Error(t *testing.T) {
	w := serve(&mockMapDataUsecase{
		collectFn: func(ctx context.Context) (*domain.MapData, error) {
			return nil, errors.New("graph down")
		},
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "graph down")
}
