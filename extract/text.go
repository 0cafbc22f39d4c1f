package extract

import (
	"fmt"
	"unicode/utf8"
)

// extractText handles plain text and markdown input.
func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: content is not valid UTF-8", ErrExtractionFailed)
	}
	return string(data), nil
}
