package client

import (
	"bytes"
	"image"

	// Screenshot replies arrive as png, jpeg or webp.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Image is an embeddable render result: the encoded bytes plus the logical
// size they were captured at. Both the fallback and the native path produce
// this shape, so callers never see which path ran.
type Image struct {
	Data   []byte
	Width  int
	Height int
	Format string
}

// DataURI returns the image as an embeddable base64 data URI.
func (i *Image) DataURI() string {
	return EncodeImageDataURI(i.Format, i.Data)
}

// Decode decodes the image bytes.
func (i *Image) Decode() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(i.Data))
	return img, err
}
