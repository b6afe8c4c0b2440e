package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin("password", "success")
	c.RecordLogin("password", "success")
	c.RecordLogin("google", "failure")
	c.RecordGraphConnect(false)
	c.RecordGraphConnect(true)
	c.RecordUpload("kappa", nil)
	c.RecordUpload("kappa", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.logins.WithLabelValues("password", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.logins.WithLabelValues("google", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.graphConnects.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.graphConnects.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.uploads.WithLabelValues("kappa", "failure")))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordLogin("password", "success")
		c.RecordGraphConnect(true)
		c.RecordUpload("djinn", nil)
		c.ObserveHTTP("GET", "/api/health", 200, time.Millisecond)
	})
}

func TestHandler_Exposes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObserveHTTP("GET", "/api/health", http.StatusOK, 5*time.Millisecond)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "selkie_http_request_duration_seconds")
}
