package client

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/hon2be/dom-to-image/renderer"
)

// renderNative rasterizes SVG locally with oksvg. This is the light path
// taken when the capability check does not select the server fallback. It
// encodes png and jpeg; webp requests must go through the fallback service.
func renderNative(svg string, opts RenderOptions) (*Image, error) {
	if opts.OutputType == renderer.FormatWebP {
		return nil, renderer.Errorf(renderer.KindValidation, "render native",
			"the native path cannot encode webp; use the fallback service")
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(svg), oksvg.WarnErrorMode)
	if err != nil {
		return nil, renderer.NewError(renderer.KindDimension, "parse svg", err)
	}

	width, height := icon.ViewBox.W, icon.ViewBox.H
	if width <= 0 || height <= 0 {
		width, height = renderer.GuessDimensions(svg)
	}

	logicalW := int(math.Ceil(width))
	logicalH := int(math.Ceil(height))
	if logicalW < 1 {
		logicalW = 1
	}
	if logicalH < 1 {
		logicalH = 1
	}
	physicalW := int(math.Ceil(float64(logicalW) * opts.DeviceScaleFactor))
	physicalH := int(math.Ceil(float64(logicalH) * opts.DeviceScaleFactor))

	rgba := image.NewRGBA(image.Rect(0, 0, physicalW, physicalH))
	if opts.OutputType == renderer.FormatJPEG {
		// JPEG has no alpha channel; flatten onto white.
		draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	}

	icon.SetTarget(0, 0, float64(physicalW), float64(physicalH))
	scanner := rasterx.NewScannerGV(physicalW, physicalH, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(physicalW, physicalH, scanner)
	icon.Draw(raster, 1.0)

	var buf bytes.Buffer
	switch opts.OutputType {
	case renderer.FormatJPEG:
		q := int(math.Round(opts.Quality * 100))
		err = jpeg.Encode(&buf, rgba, &jpeg.Options{Quality: q})
	default:
		err = png.Encode(&buf, rgba)
	}
	if err != nil {
		return nil, renderer.NewError(renderer.KindRender, "encode image", err)
	}

	return &Image{
		Data:   buf.Bytes(),
		Width:  logicalW,
		Height: logicalH,
		Format: opts.OutputType,
	}, nil
}
