package extractor

import (
	"errors"
	"unicode/utf8"
)

var errInvalidUTF8 = errors.New("invalid utf-8 byte sequence")

// Text decodes plain-text uploads as UTF-8.
type Text struct{}

// NewText creates the plain text format.
func NewText() *Text {
	return &Text{}
}

// Extensions implements Format.
func (t *Text) Extensions() []string {
	return []string{".txt"}
}

// Extract returns data as a string, failing on any invalid UTF-8 sequence.
func (t *Text) Extract(filename string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &ExtractionError{Filename: filename, Reason: "invalid UTF-8 text", Err: errInvalidUTF8}
	}
	return string(data), nil
}
