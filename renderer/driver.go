package renderer

import (
	"context"
	"sync"
	"time"
)

// Extent is a measured rendered size in logical pixels.
type Extent struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LaunchOptions configure a fresh engine instance for one render.
type LaunchOptions struct {
	// Initial viewport guess, replaced by the measured extent before capture.
	Width  int
	Height int
	// Pixel density multiplier applied to the viewport.
	Scale float64
	// Optional browser executable path override.
	ExecPath string
}

// Session is one exclusive page inside one engine instance. A session is
// owned by a single render call and must be closed on every exit path.
type Session interface {
	// Load replaces the page document with html and waits until its network
	// activity settles or timeout elapses, whichever comes first.
	Load(ctx context.Context, html string, timeout time.Duration) error

	// MeasureSVG locates the first <svg> element in the loaded document and
	// returns its rendered bounding box. Returns (nil, nil) when the document
	// contains no SVG element.
	MeasureSVG(ctx context.Context) (*Extent, error)

	// Resize sets the page viewport to the given logical size at the given
	// pixel density.
	Resize(ctx context.Context, width, height int, scale float64) error

	// Capture takes a full-document screenshot with a transparent background.
	Capture(ctx context.Context, enc Encoding) ([]byte, error)

	// Close releases the page and its engine instance.
	Close() error
}

// Driver launches isolated engine instances. Implementations wrap one
// concrete headless runtime; the render pipeline itself is engine-agnostic.
type Driver interface {
	Name() string
	Formats() []string
	Launch(ctx context.Context, opts LaunchOptions) (Session, error)
}

var (
	driversMu sync.RWMutex
	drivers   = map[string]func() Driver{}
	resolved  = map[string]Driver{}
)

// RegisterDriver makes a driver constructor available under name. Called from
// driver package init functions.
func RegisterDriver(name string, factory func() Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = factory
}

// ResolveDriver returns the driver registered under name, constructing it on
// first use. An unknown name is a ConfigurationError.
func ResolveDriver(name string) (Driver, error) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if d, ok := resolved[name]; ok {
		return d, nil
	}
	factory, ok := drivers[name]
	if !ok {
		return nil, Errorf(KindConfiguration, "resolve driver",
			"unknown driver %q (have %v)", name, driverNamesLocked())
	}
	d := factory()
	resolved[name] = d
	return d, nil
}

// DriverNames lists the registered driver names.
func DriverNames() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	return driverNamesLocked()
}

func driverNamesLocked() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	return names
}

func driverSupports(d Driver, format string) bool {
	for _, f := range d.Formats() {
		if f == format {
			return true
		}
	}
	return false
}

func unsupportedByDriver(d Driver, format string) error {
	return Errorf(KindValidation, "validate request",
		"driver %s cannot encode %q (supports %v)",
		d.Name(), format, d.Formats())
}
