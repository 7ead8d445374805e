// Package renderer turns SVG markup into raster images by laying it out in a
// headless browsing engine and capturing a screenshot sized exactly to the
// rendered extent.
package renderer

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/flanksource/commons/logger"
)

// DefaultDriver is the engine driver used when none is named.
const DefaultDriver = "chrome"

// Default request parameters.
const (
	DefaultQuality           = 1.0
	DefaultDeviceScaleFactor = 2.0
	DefaultTimeout           = 30 * time.Second
)

// Options configure a single render call.
type Options struct {
	// OutputType is png, jpeg or webp. Default png.
	OutputType string
	// Quality in [0,1], meaningful only for jpeg. Default 1.
	Quality float64
	// DeviceScaleFactor multiplies logical pixels into physical ones. Default 2.
	DeviceScaleFactor float64
	// Timeout bounds the content-load wait, not the whole call. Default 30s.
	Timeout time.Duration
	// Driver names the engine driver. Default "chrome".
	Driver string
	// ExecPath overrides the browser executable location.
	ExecPath string
	// SavePath, when set, additionally writes the buffer to this file.
	SavePath string
	// DebugDir, when set, dumps the HTML shell and the capture there.
	DebugDir string
}

// normalized applies documented defaults. Out-of-range numeric values fall
// back to their default rather than failing the call; only an unrecognized
// OutputType is rejected, and that check happens in Render before launch.
func (o Options) normalized() Options {
	if o.OutputType == "" {
		o.OutputType = FormatPNG
	}
	if o.Quality < 0 || o.Quality > 1 || math.IsNaN(o.Quality) {
		o.Quality = DefaultQuality
	}
	if o.DeviceScaleFactor <= 0 || math.IsNaN(o.DeviceScaleFactor) || math.IsInf(o.DeviceScaleFactor, 0) {
		o.DeviceScaleFactor = DefaultDeviceScaleFactor
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Driver == "" {
		o.Driver = DefaultDriver
	}
	return o
}

// Result is a completed render: the encoded image and the logical viewport
// size it was captured at. Width and Height are unscaled; the buffer holds
// Width*scale by Height*scale physical pixels.
type Result struct {
	Buffer    []byte
	Width     int
	Height    int
	Format    string
	SavedPath string
}

// Renderer renders SVG documents through a headless engine driver. The zero
// value uses the default driver with no debug output.
type Renderer struct {
	// Driver names the default engine driver for calls that do not pick one.
	Driver string
	// ExecPath overrides the browser executable for all calls.
	ExecPath string
	// DebugDir enables artifact dumping for all calls when set.
	DebugDir string
}

// New returns a renderer using the named driver ("" for the default).
func New(driver string) *Renderer {
	return &Renderer{Driver: driver}
}

// Render rasterizes svg per opts. Each call owns one isolated engine
// instance, which is released before the result or error is returned.
func (r *Renderer) Render(ctx context.Context, svg string, opts Options) (*Result, error) {
	if svg == "" {
		return nil, Errorf(KindValidation, "validate request", "svg content is required")
	}

	opts = r.withDefaults(opts).normalized()
	if !IsSupportedFormat(opts.OutputType) {
		return nil, Errorf(KindValidation, "validate request",
			"unsupported output type %q (supported: %v)", opts.OutputType, Formats)
	}

	driver, err := ResolveDriver(opts.Driver)
	if err != nil {
		return nil, err
	}
	if !driverSupports(driver, opts.OutputType) {
		return nil, unsupportedByDriver(driver, opts.OutputType)
	}

	started := time.Now()

	// Seed the viewport from the markup so the page lays out near its final
	// size; the real extent is measured after load.
	guessW, guessH := GuessDimensions(svg)
	launch := LaunchOptions{
		Width:    ceilAtLeastOne(guessW),
		Height:   ceilAtLeastOne(guessH),
		Scale:    opts.DeviceScaleFactor,
		ExecPath: opts.ExecPath,
	}

	sess, err := driver.Launch(ctx, launch)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warnf("closing %s session: %v", driver.Name(), cerr)
		}
	}()

	html := documentFor(svg)
	r.dumpDebug(opts, "document.html", []byte(html))

	if err := sess.Load(ctx, html, opts.Timeout); err != nil {
		return nil, err
	}

	extent, err := sess.MeasureSVG(ctx)
	if err != nil {
		return nil, err
	}
	if extent == nil {
		return nil, Errorf(KindDimension, "measure svg",
			"document contains no svg element")
	}

	width := ceilAtLeastOne(extent.Width)
	height := ceilAtLeastOne(extent.Height)
	if err := sess.Resize(ctx, width, height, opts.DeviceScaleFactor); err != nil {
		return nil, err
	}

	buf, err := sess.Capture(ctx, EncodingFor(opts.OutputType, opts.Quality))
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, Errorf(KindRender, "capture screenshot", "empty screenshot buffer")
	}
	r.dumpDebug(opts, "capture."+opts.OutputType, buf)

	result := &Result{
		Buffer: buf,
		Width:  width,
		Height: height,
		Format: opts.OutputType,
	}

	if opts.SavePath != "" {
		if err := os.WriteFile(opts.SavePath, buf, 0o644); err != nil {
			return nil, NewError(KindRender, "save capture", err)
		}
		result.SavedPath = opts.SavePath
	}

	logger.Debugf("rendered %dx%d %s (%d bytes, scale %g) via %s in %s",
		width, height, result.Format, len(buf), opts.DeviceScaleFactor,
		driver.Name(), time.Since(started).Round(time.Millisecond))
	return result, nil
}

func (r *Renderer) withDefaults(opts Options) Options {
	if opts.Driver == "" {
		opts.Driver = r.Driver
	}
	if opts.ExecPath == "" {
		opts.ExecPath = r.ExecPath
	}
	if opts.DebugDir == "" {
		opts.DebugDir = r.DebugDir
	}
	return opts
}

func (r *Renderer) dumpDebug(opts Options, name string, data []byte) {
	if opts.DebugDir == "" {
		return
	}
	path := filepath.Join(opts.DebugDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warnf("writing debug artifact %s: %v", path, err)
	}
}

func ceilAtLeastOne(v float64) int {
	n := int(math.Ceil(v))
	if n < 1 {
		n = 1
	}
	return n
}

// Render rasterizes svg with the default renderer.
func Render(ctx context.Context, svg string, opts Options) (*Result, error) {
	return (&Renderer{}).Render(ctx, svg, opts)
}

// RenderPNG renders svg as PNG.
func RenderPNG(ctx context.Context, svg string, opts Options) (*Result, error) {
	opts.OutputType = FormatPNG
	return Render(ctx, svg, opts)
}

// RenderJPEG renders svg as JPEG at the given [0,1] quality.
func RenderJPEG(ctx context.Context, svg string, quality float64, opts Options) (*Result, error) {
	opts.OutputType = FormatJPEG
	opts.Quality = quality
	return Render(ctx, svg, opts)
}

// RenderWebP renders svg as WebP.
func RenderWebP(ctx context.Context, svg string, opts Options) (*Result, error) {
	opts.OutputType = FormatWebP
	return Render(ctx, svg, opts)
}
