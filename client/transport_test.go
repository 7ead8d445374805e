package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hon2be/dom-to-image/renderer"
)

func TestTransportRender(t *testing.T) {
	var received renderSubmission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/render", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Image-Width", "120")
		w.Header().Set("X-Image-Height", "60")
		w.Header().Set("X-Image-Format", "png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	transport := &Transport{ServiceURL: srv.URL}
	img, err := transport.Render(context.Background(), `<svg width="120" height="60"></svg>`,
		RenderOptions{OutputType: "png", DeviceScaleFactor: 3})
	require.NoError(t, err)

	assert.Equal(t, []byte("png-bytes"), img.Data)
	assert.Equal(t, 120, img.Width)
	assert.Equal(t, 60, img.Height)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, "data:image/png;base64,", img.DataURI()[:22])

	assert.Equal(t, `<svg width="120" height="60"></svg>`, received.SVG)
	assert.Equal(t, "png", received.OutputType)
	assert.Equal(t, 3.0, received.DeviceScaleFactor)
	assert.Equal(t, 1.0, received.Quality, "default quality travels explicitly")
}

func TestTransportServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "svg content is required",
			"type":  "ValidationError",
		})
	}))
	defer srv.Close()

	transport := &Transport{ServiceURL: srv.URL}
	_, err := transport.Render(context.Background(), "", RenderOptions{})
	require.Error(t, err)
	assert.True(t, renderer.IsKind(err, renderer.KindTransport))
	assert.Contains(t, err.Error(), "svg content is required")
	assert.Contains(t, err.Error(), "ValidationError")
}

func TestTransportNonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	transport := &Transport{ServiceURL: srv.URL}
	_, err := transport.Render(context.Background(), "<svg/>", RenderOptions{})
	require.Error(t, err)
	assert.True(t, renderer.IsKind(err, renderer.KindTransport))
	assert.Contains(t, err.Error(), "502")
}

func TestTransportConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	transport := &Transport{ServiceURL: srv.URL}
	_, err := transport.Render(context.Background(), "<svg/>", RenderOptions{})
	require.Error(t, err)
	assert.True(t, renderer.IsKind(err, renderer.KindTransport))
}
