package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/routepath/config"
	"github.com/mfreeman451/routepath/httpapi"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandler_ServesIndexAndSubmitAndImages(t *testing.T) {
	cfg := config.Default()
	s, err := httpapi.NewServer(cfg, discardLogger())
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	for _, path := range []string{"/", "/submit", "/images/marker.svg", "/images/polygon.svg", "/images/rectangle.svg"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestHandleRun_HappyPath(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements":[
			{"type":"node","id":1,"lat":53.000,"lon":8.000},
			{"type":"node","id":2,"lat":53.001,"lon":8.000},
			{"type":"way","id":10,"nodes":[1,2]}
		]}`))
	}))
	defer upstream.Close()

	cfg := config.Default()
	cfg.OverpassURL = upstream.URL
	s, err := httpapi.NewServer(cfg, discardLogger())
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{
		"algorithm": "serial",
		"start":     [2]float64{53.000, 8.000},
		"dest":      [2]float64{53.001, 8.000},
		"bbox":      [][2]float64{{52.9, 7.9}, {53.1, 7.9}, {53.1, 8.1}},
	})

	resp, err := http.Post(srv.URL+"/run", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, true, out["success"])
}

func TestHandleRun_MalformedBodyRejected(t *testing.T) {
	cfg := config.Default()
	s, err := httpapi.NewServer(cfg, discardLogger())
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/run", "application/json", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleRun_TooFewBBoxVerticesRejected(t *testing.T) {
	cfg := config.Default()
	s, err := httpapi.NewServer(cfg, discardLogger())
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{
		"algorithm": "serial",
		"start":     [2]float64{53.000, 8.000},
		"dest":      [2]float64{53.001, 8.000},
		"bbox":      [][2]float64{{52.9, 7.9}, {53.1, 7.9}},
	})
	resp, err := http.Post(srv.URL+"/run", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
