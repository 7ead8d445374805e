// Package client embeds DOM content as raster images, routing each call
// either through a local SVG rasterizer or the server-rendered fallback
// service, depending on a per-browser capability check.
package client

import (
	"context"
	"math"

	"github.com/flanksource/commons/logger"

	"github.com/hon2be/dom-to-image/renderer"
)

// Snapshotter is the external DOM-snapshot collaborator: it serializes a live
// node into SVG markup, possibly wrapped as a data:image/svg+xml URI.
type Snapshotter func(ctx context.Context, node any) (string, error)

// RenderOptions configure one embedding call.
type RenderOptions struct {
	// OutputType is png, jpeg or webp. Default png.
	OutputType string
	// Quality in [0,1], jpeg only. Default 1.
	Quality float64
	// DeviceScaleFactor multiplies logical pixels into physical ones. Default 2.
	DeviceScaleFactor float64
}

func (o RenderOptions) normalized() RenderOptions {
	if o.OutputType == "" {
		o.OutputType = renderer.FormatPNG
	}
	if o.Quality <= 0 || o.Quality > 1 || math.IsNaN(o.Quality) {
		o.Quality = renderer.DefaultQuality
	}
	if o.DeviceScaleFactor <= 0 || math.IsNaN(o.DeviceScaleFactor) || math.IsInf(o.DeviceScaleFactor, 0) {
		o.DeviceScaleFactor = renderer.DefaultDeviceScaleFactor
	}
	return o
}

// Client turns DOM nodes into embeddable images. Snapshot is required;
// Transport is required unless the fallback path is disabled.
type Client struct {
	// Snapshot produces the SVG representation of a node.
	Snapshot Snapshotter
	// Capability decides whether to take the fallback path. Defaults to
	// user-agent classification.
	Capability Capability
	// Transport reaches the fallback service.
	Transport *Transport
	// UserAgent is the browser identity evaluated by Capability.
	UserAgent string
	// DisableFallback forces the native path regardless of capability.
	DisableFallback bool
}

// ToImage snapshots node and renders it per opts. The result shape is the
// same whichever path ran.
func (c *Client) ToImage(ctx context.Context, node any, opts RenderOptions) (*Image, error) {
	if c.Snapshot == nil {
		return nil, renderer.Errorf(renderer.KindValidation, "snapshot node",
			"no snapshot producer configured")
	}

	raw, err := c.Snapshot(ctx, node)
	if err != nil {
		return nil, renderer.NewError(renderer.KindRender, "snapshot node", err)
	}
	svg, err := DecodeSVGDataURI(raw)
	if err != nil {
		return nil, err
	}

	opts = opts.normalized()
	if c.useFallback(opts) {
		logger.Debugf("routing %s render through fallback service", opts.OutputType)
		return c.Transport.Render(ctx, svg, opts)
	}
	return renderNative(svg, opts)
}

// ToPNG renders node as PNG.
func (c *Client) ToPNG(ctx context.Context, node any, opts RenderOptions) (*Image, error) {
	opts.OutputType = renderer.FormatPNG
	return c.ToImage(ctx, node, opts)
}

// ToJPEG renders node as JPEG.
func (c *Client) ToJPEG(ctx context.Context, node any, opts RenderOptions) (*Image, error) {
	opts.OutputType = renderer.FormatJPEG
	return c.ToImage(ctx, node, opts)
}

// ToWebP renders node as WebP. Always takes the fallback path, since the
// native rasterizer has no webp encoder.
func (c *Client) ToWebP(ctx context.Context, node any, opts RenderOptions) (*Image, error) {
	opts.OutputType = renderer.FormatWebP
	return c.ToImage(ctx, node, opts)
}

func (c *Client) useFallback(opts RenderOptions) bool {
	if c.Transport == nil || c.DisableFallback {
		return false
	}
	if opts.OutputType == renderer.FormatWebP {
		return true
	}
	capability := c.Capability
	if capability == nil {
		capability = UserAgentCapability{}
	}
	return capability.UseFallback(c.UserAgent)
}
