package client

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/hon2be/dom-to-image/renderer"
)

const svgDataURIScheme = "data:image/svg+xml"

// DecodeSVGDataURI strips the data-URI envelope produced by the DOM snapshot
// collaborator (data:image/svg+xml[;base64|;charset=…],payload) and returns
// the raw SVG markup. Input that is not a data URI is assumed to already be
// raw markup and passes through unchanged.
func DecodeSVGDataURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, svgDataURIScheme) {
		return uri, nil
	}

	comma := strings.Index(uri, ",")
	if comma == -1 {
		return "", renderer.Errorf(renderer.KindValidation, "decode data uri",
			"malformed data URI: no payload separator")
	}

	header := uri[len(svgDataURIScheme):comma]
	payload := uri[comma+1:]

	if strings.Contains(header, "base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", renderer.Errorf(renderer.KindValidation, "decode data uri",
				"invalid base64 payload: %v", err)
		}
		return string(decoded), nil
	}

	// Percent-encoded (or plain) text payload.
	if decoded, err := url.QueryUnescape(payload); err == nil {
		return decoded, nil
	}
	return payload, nil
}

// EncodeImageDataURI wraps encoded image bytes in a base64 data URI.
func EncodeImageDataURI(format string, data []byte) string {
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(data)
}
