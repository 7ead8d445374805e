package renderer

import (
	"errors"
	"fmt"
)

// Kind classifies a render failure. The HTTP layer maps KindValidation to a
// 400 status and every other kind to 500; the kind string is what clients see
// in the "type" field of an error response.
type Kind string

const (
	// KindConfiguration means the browsing engine runtime could not be
	// obtained (e.g. not installed). Fatal, never retried automatically.
	KindConfiguration Kind = "ConfigurationError"
	// KindValidation means the request was malformed. Always the caller's
	// fault, never retried.
	KindValidation Kind = "ValidationError"
	// KindDimension means the rendered document had no discoverable SVG root.
	KindDimension Kind = "DimensionError"
	// KindTimeout means content failed to settle within the load bound.
	KindTimeout Kind = "TimeoutError"
	// KindTransport means the fallback service could not be reached or
	// replied with a failure.
	KindTransport Kind = "TransportError"
	// KindRender is an uncategorized capture failure.
	KindRender Kind = "RenderError"
)

// Error is a render failure with a kind tag and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a tagged render error.
func NewError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf creates a tagged render error from a format string.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind tag of err, or KindRender if err carries none.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindRender
}

// IsKind reports whether err carries the given kind tag.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
