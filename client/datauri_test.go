package client

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hon2be/dom-to-image/renderer"
)

func TestDecodeSVGDataURI(t *testing.T) {
	const markup = `<svg width="10" height="10"></svg>`

	t.Run("base64 payload", func(t *testing.T) {
		uri := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(markup))
		svg, err := DecodeSVGDataURI(uri)
		require.NoError(t, err)
		assert.Equal(t, markup, svg)
	})

	t.Run("charset with percent-encoded payload", func(t *testing.T) {
		uri := "data:image/svg+xml;charset=utf-8,%3Csvg%20width%3D%2210%22%20height%3D%2210%22%3E%3C%2Fsvg%3E"
		svg, err := DecodeSVGDataURI(uri)
		require.NoError(t, err)
		assert.Equal(t, markup, svg)
	})

	t.Run("plain payload", func(t *testing.T) {
		svg, err := DecodeSVGDataURI("data:image/svg+xml,<svg/>")
		require.NoError(t, err)
		assert.Equal(t, "<svg/>", svg)
	})

	t.Run("raw markup passes through", func(t *testing.T) {
		svg, err := DecodeSVGDataURI(markup)
		require.NoError(t, err)
		assert.Equal(t, markup, svg)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := DecodeSVGDataURI("data:image/svg+xml;base64")
		assert.True(t, renderer.IsKind(err, renderer.KindValidation))
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := DecodeSVGDataURI("data:image/svg+xml;base64,!!!not-base64!!!")
		assert.True(t, renderer.IsKind(err, renderer.KindValidation))
	})
}

func TestEncodeImageDataURI(t *testing.T) {
	uri := EncodeImageDataURI("png", []byte{1, 2, 3})
	assert.Equal(t, "data:image/png;base64,AQID", uri)
}
