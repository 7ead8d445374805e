package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hon2be/dom-to-image/renderer"
)

// Transport submits SVG markup to a running fallback service and converts the
// binary reply back into the result shape the native path produces. It
// performs no capability detection; whether to use it belongs to the caller.
type Transport struct {
	// ServiceURL is the base URL of the fallback service, e.g.
	// "http://localhost:3000". The /render path is appended.
	ServiceURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

type renderSubmission struct {
	SVG               string  `json:"svg"`
	OutputType        string  `json:"outputType,omitempty"`
	Quality           float64 `json:"quality"`
	DeviceScaleFactor float64 `json:"deviceScaleFactor,omitempty"`
}

type serviceFailure struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

// Render submits svg to the fallback service and returns the rendered image.
func (t *Transport) Render(ctx context.Context, svg string, opts RenderOptions) (*Image, error) {
	opts = opts.normalized()

	body, err := json.Marshal(renderSubmission{
		SVG:               svg,
		OutputType:        opts.OutputType,
		Quality:           opts.Quality,
		DeviceScaleFactor: opts.DeviceScaleFactor,
	})
	if err != nil {
		return nil, renderer.NewError(renderer.KindTransport, "encode request", err)
	}

	endpoint := strings.TrimSuffix(t.ServiceURL, "/") + "/render"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, renderer.NewError(renderer.KindTransport, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := t.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, renderer.NewError(renderer.KindTransport, "submit render request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, failureFrom(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, renderer.NewError(renderer.KindTransport, "read render response", err)
	}
	if len(data) == 0 {
		return nil, renderer.Errorf(renderer.KindTransport, "read render response",
			"empty image body")
	}

	format := resp.Header.Get("X-Image-Format")
	if format == "" {
		format = strings.TrimPrefix(resp.Header.Get("Content-Type"), "image/")
	}
	return &Image{
		Data:   data,
		Width:  headerInt(resp, "X-Image-Width"),
		Height: headerInt(resp, "X-Image-Height"),
		Format: format,
	}, nil
}

// failureFrom surfaces the server's reported message and kind tag.
func failureFrom(resp *http.Response) error {
	var failure serviceFailure
	if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil || failure.Error == "" {
		return renderer.Errorf(renderer.KindTransport, "render request",
			"fallback service replied %s", resp.Status)
	}
	return renderer.Errorf(renderer.KindTransport, "render request",
		"fallback service replied %s: %s (%s)", resp.Status, failure.Error, failure.Type)
}

func headerInt(resp *http.Response, name string) int {
	n, _ := strconv.Atoi(resp.Header.Get(name))
	return n
}
