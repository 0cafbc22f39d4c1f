package extract

import "errors"

var (
	// ErrUnsupportedFormat indicates a declared file type outside the
	// supported set.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailed indicates corrupt or unreadable content in a
	// nominally supported format.
	ErrExtractionFailed = errors.New("extraction failed")
)
