// Package domtoimage converts SVG documents into raster images by rendering
// them in a headless browsing engine and capturing a screenshot sized to the
// rendered extent. This file re-exports the call surface of the subpackages.
package domtoimage

import (
	"github.com/hon2be/dom-to-image/client"
	"github.com/hon2be/dom-to-image/renderer"
)

// Type aliases over the core packages.
type (
	Options       = renderer.Options
	Result        = renderer.Result
	Error         = renderer.Error
	Kind          = renderer.Kind
	Renderer      = renderer.Renderer
	Client        = client.Client
	Transport     = client.Transport
	Image         = client.Image
	Capability    = client.Capability
	RenderOptions = client.RenderOptions
	Snapshotter   = client.Snapshotter
)

// Format constants.
const (
	FormatPNG  = renderer.FormatPNG
	FormatJPEG = renderer.FormatJPEG
	FormatWebP = renderer.FormatWebP
)

// Error kinds.
const (
	KindConfiguration = renderer.KindConfiguration
	KindValidation    = renderer.KindValidation
	KindDimension     = renderer.KindDimension
	KindTimeout       = renderer.KindTimeout
	KindTransport     = renderer.KindTransport
	KindRender        = renderer.KindRender
)

// Function aliases.
var (
	Render           = renderer.Render
	RenderPNG        = renderer.RenderPNG
	RenderJPEG       = renderer.RenderJPEG
	RenderWebP       = renderer.RenderWebP
	GuessDimensions  = renderer.GuessDimensions
	KindOf           = renderer.KindOf
	IsKind           = renderer.IsKind
	DecodeSVGDataURI = client.DecodeSVGDataURI
)
