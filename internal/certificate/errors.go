package certificate

import (
	"errors"

	"certgen/certificate-backend/internal/assets"
	"certgen/certificate-backend/pkg/pdf"
)

// Warning kinds. None of these abort a render.
var (
	ErrAssetUnavailable   = assets.ErrUnavailable
	ErrRemoteFetch        = assets.ErrRemoteFetch
	ErrFontRegistration   = pdf.ErrFontRegistration
	ErrOverflowTruncation = errors.New("body text truncated")
)

var (
	// ErrRenderIO is returned when the destination cannot be written.
	ErrRenderIO = errors.New("render output failed")
	// ErrInvalidRequest is returned before any drawing when a request is unusable.
	ErrInvalidRequest = errors.New("invalid certificate request")
)

// Warning is a non-fatal problem met while rendering.
type Warning struct {
	Kind  error  `json:"-"`
	Asset string `json:"asset,omitempty"`
	Err   error  `json:"-"`
}

func (w Warning) Error() string {
	if w.Err != nil {
		return w.Err.Error()
	}
	return w.Kind.Error()
}

func (w Warning) Unwrap() []error {
	if w.Err == nil {
		return []error{w.Kind}
	}
	return []error{w.Kind, w.Err}
}

// classify maps a loader error onto its warning kind.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrRemoteFetch):
		return ErrRemoteFetch
	default:
		return ErrAssetUnavailable
	}
}
