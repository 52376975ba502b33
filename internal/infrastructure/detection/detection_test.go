package detection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/geometry"
	"frame-guide/internal/domain/port"
)

func testFrame() *entity.Frame {
	return &entity.Frame{
		Data:       []byte{0xff, 0xd8, 0xff, 0xd9},
		Dimensions: entity.FrameDimensions{Width: 640, Height: 480},
	}
}

func TestHTTPDetector_Detect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req detectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.True(t, strings.HasPrefix(req.Image, "data:image/jpeg;base64,"))

		_, _ = w.Write([]byte(`[{"name":"cup","score":0.87,"boundingPoly":{"normalizedVertices":[
			{"x":0.1,"y":0.1},{"x":0.3,"y":0.1},{"x":0.3,"y":0.3},{"x":0.1,"y":0.3}]}}]`))
	}))
	defer srv.Close()

	objects, err := NewHTTPDetector(srv.URL, srv.Client()).Detect(context.Background(), testFrame())
	require.NoError(t, err)
	require.Len(t, objects, 1)
	require.Equal(t, "cup", objects[0].Name)
	require.InDelta(t, 0.87, objects[0].Score, 1e-9)
	require.Len(t, objects[0].Polygon(), 4)
	require.Equal(t, geometry.Point{X: 0.3, Y: 0.3}, objects[0].Polygon()[2])
}

func TestHTTPDetector_EmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	objects, err := NewHTTPDetector(srv.URL, srv.Client()).Detect(context.Background(), testFrame())
	require.NoError(t, err)
	require.NotNil(t, objects)
	require.Empty(t, objects)
}

func TestHTTPDetector_TransportErrors(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer garbage.Close()

	tests := []struct {
		name  string
		url   string
		frame *entity.Frame
	}{
		{name: "status", url: failing.URL, frame: testFrame()},
		{name: "body", url: garbage.URL, frame: testFrame()},
		{name: "empty frame", url: garbage.URL, frame: &entity.Frame{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTTPDetector(tt.url, nil).Detect(context.Background(), tt.frame)
			require.ErrorIs(t, err, port.ErrDetectionTransport)
		})
	}
}

func TestParseObjects(t *testing.T) {
	raw := "```json\n" + `{
		"objects": [
			{"name": " Cup ", "score": 0.9, "box": {"x": 0.1, "y": 0.2, "w": 0.3, "h": 0.4}}, // the mug
			{"name": "phone", "score": 1.4, "box": {"x": 0.8, "y": 0.8, "w": 0.5, "h": 0.5}},
			{"name": "", "score": 0.5, "box": {"x": 0.1, "y": 0.1, "w": 0.1, "h": 0.1}},
			{"name": "line", "score": 0.5, "box": {"x": 0.1, "y": 0.1, "w": 0, "h": 0.1}},
		]
	}` + "\n```"

	objects, err := parseObjects(raw)
	require.NoError(t, err)
	require.Len(t, objects, 2)

	require.Equal(t, "cup", objects[0].Name)
	require.InDelta(t, 0.9, objects[0].Score, 1e-9)
	require.InDeltaSlice(t,
		[]float64{0.1, 0.2, 0.4, 0.6},
		[]float64{objects[0].Polygon()[0].X, objects[0].Polygon()[0].Y, objects[0].Polygon()[2].X, objects[0].Polygon()[2].Y},
		1e-9)

	// clamped into the unit square
	require.Equal(t, "phone", objects[1].Name)
	require.Equal(t, 1.0, objects[1].Score)
	require.Equal(t, geometry.Point{X: 1, Y: 1}, objects[1].Polygon()[2])
}

func TestParseObjects_NotJSON(t *testing.T) {
	_, err := parseObjects("I see a cup on the table.")
	require.Error(t, err)
}

func TestOllamaDetector_Detect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "llava", req["model"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "llava",
			"message": map[string]any{
				"role":    "assistant",
				"content": `{"objects":[{"name":"bottle","score":0.8,"box":{"x":0.4,"y":0.4,"w":0.2,"h":0.2}}]}`,
			},
			"done": true,
		})
	}))
	defer srv.Close()

	d, err := NewOllamaDetector(srv.URL+"/api/chat", "llava", srv.Client())
	require.NoError(t, err)

	objects, err := d.Detect(context.Background(), testFrame())
	require.NoError(t, err)
	require.Len(t, objects, 1)
	require.Equal(t, "bottle", objects[0].Name)
}

func TestNewOllamaDetector_BadURL(t *testing.T) {
	_, err := NewOllamaDetector("localhost", "llava", nil)
	require.Error(t, err)
}

func TestNewOllamaDetector_DefaultClientHasTimeout(t *testing.T) {
	d, err := NewOllamaDetector("http://localhost:11434", "llava", nil)
	require.NoError(t, err)
	require.Equal(t, ollamaTimeout, d.httpClient.Timeout)
}

func TestOllamaDetector_UnresponsiveServer(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	d, err := NewOllamaDetector(srv.URL, "llava", &http.Client{Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = d.Detect(context.Background(), testFrame())
	require.ErrorIs(t, err, port.ErrDetectionTransport)
}
