package renderer

import (
	"math"

	"github.com/samber/lo"
)

// Supported output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatWebP = "webp"
)

// Formats lists the supported output formats in preference order.
var Formats = []string{FormatPNG, FormatJPEG, FormatWebP}

// IsSupportedFormat reports whether format is one of png, jpeg or webp.
func IsSupportedFormat(format string) bool {
	return lo.Contains(Formats, format)
}

// Encoding carries the screenshot encoding parameters handed to a driver
// session. Quality is only set for jpeg.
type Encoding struct {
	Format  string
	Quality *int
}

// EncodingFor maps a requested format and a [0,1] quality into screenshot
// encoding parameters. png and webp ignore quality; jpeg scales it to the
// engine's 0-100 integer range, rounding to the nearest integer. Format
// legality is validated before rendering starts, not here.
func EncodingFor(format string, quality float64) Encoding {
	enc := Encoding{Format: format}
	if format == FormatJPEG {
		q := int(math.Round(quality * 100))
		enc.Quality = &q
	}
	return enc
}
