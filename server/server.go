// Package server exposes the SVG fallback-rendering service over HTTP.
package server

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"

	"github.com/hon2be/dom-to-image/renderer"
)

// ServiceName identifies the service in health replies.
const ServiceName = "dom-to-image"

// Options configure the fallback service.
type Options struct {
	// Driver names the engine driver used for every render.
	Driver string
	// ExecPath overrides the browser executable.
	ExecPath string
	// DebugDir enables render artifact dumping when set.
	DebugDir string
	// Version is reported by /health.
	Version string
}

// Server is the stateless fallback-rendering HTTP service. Every request
// rents its own engine instance; the only shared state is passive counters.
type Server struct {
	renderer *renderer.Renderer
	stats    *Stats
	version  string
}

// New creates a fallback service.
func New(opts Options) *Server {
	return &Server{
		renderer: &renderer.Renderer{
			Driver:   opts.Driver,
			ExecPath: opts.ExecPath,
			DebugDir: opts.DebugDir,
		},
		stats:   NewStats(),
		version: opts.Version,
	}
}

// Handler returns the service routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /render", s.handleRender)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	return mux
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.stats.CountRequest()

	svg, opts, err := parseRenderRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.renderer.Render(r.Context(), svg, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/"+result.Format)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Buffer)))
	w.Header().Set("X-Image-Width", strconv.Itoa(result.Width))
	w.Header().Set("X-Image-Height", strconv.Itoa(result.Height))
	w.Header().Set("X-Image-Format", result.Format)
	// The buffer is complete before the first byte goes out; a failed render
	// never produces a partially-written image response.
	if _, err := w.Write(result.Buffer); err != nil {
		logger.Warnf("writing render response: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
		"version": s.version,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := renderer.KindOf(err)
	status := http.StatusInternalServerError
	if kind == renderer.KindValidation {
		status = http.StatusBadRequest
	}
	logger.Debugf("render request failed (%s): %v", kind, err)
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"type":  string(kind),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warnf("encoding response: %v", err)
	}
}

// renderPayload is the JSON request body. Pointer fields distinguish absent
// values from explicit zeroes.
type renderPayload struct {
	SVG               string   `json:"svg"`
	OutputType        string   `json:"outputType"`
	Quality           *float64 `json:"quality"`
	DeviceScaleFactor *float64 `json:"deviceScaleFactor"`
	TimeoutMs         *float64 `json:"timeoutMs"`
}

// parseRenderRequest accepts JSON or multipart form submissions. Numeric
// fields are coerced: anything non-finite or out of range falls back to its
// default rather than failing the request. Only a missing svg or an unknown
// outputType rejects the call.
func parseRenderRequest(r *http.Request) (string, renderer.Options, error) {
	contentType := r.Header.Get("Content-Type")

	var payload renderPayload
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return "", renderer.Options{}, renderer.Errorf(renderer.KindValidation,
				"parse request", "invalid JSON body: %v", err)
		}
	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := parseMultipart(r, &payload); err != nil {
			return "", renderer.Options{}, err
		}
	default:
		return "", renderer.Options{}, renderer.Errorf(renderer.KindValidation,
			"parse request", "unsupported content type %q", contentType)
	}

	if strings.TrimSpace(payload.SVG) == "" {
		return "", renderer.Options{}, renderer.Errorf(renderer.KindValidation,
			"parse request", "svg content is required")
	}

	opts := renderer.Options{OutputType: payload.OutputType}
	if q := payload.Quality; q != nil && isFinite(*q) {
		opts.Quality = *q
	} else {
		opts.Quality = renderer.DefaultQuality
	}
	if f := payload.DeviceScaleFactor; f != nil && isFinite(*f) && *f > 0 {
		opts.DeviceScaleFactor = *f
	}
	if t := payload.TimeoutMs; t != nil && isFinite(*t) && *t > 0 {
		opts.Timeout = time.Duration(*t * float64(time.Millisecond))
	}
	return payload.SVG, opts, nil
}

const maxMultipartMemory = 32 << 20

func parseMultipart(r *http.Request, payload *renderPayload) error {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return renderer.Errorf(renderer.KindValidation,
			"parse request", "invalid multipart body: %v", err)
	}

	payload.SVG = r.FormValue("svg")
	if payload.SVG == "" {
		if file, _, err := r.FormFile("svg"); err == nil {
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return renderer.Errorf(renderer.KindValidation,
					"parse request", "reading svg file part: %v", err)
			}
			payload.SVG = string(data)
		}
	}

	payload.OutputType = r.FormValue("outputType")
	payload.Quality = formNumber(r, "quality")
	payload.DeviceScaleFactor = formNumber(r, "deviceScaleFactor")
	payload.TimeoutMs = formNumber(r, "timeoutMs")
	return nil
}

// formNumber parses a numeric form field, treating absent or unparsable
// values as unset so they pick up defaults.
func formNumber(r *http.Request, field string) *float64 {
	raw := r.FormValue(field)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &n
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
