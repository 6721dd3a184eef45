// Package extractor turns uploaded documents into plain text.
// The decoding strategy is chosen by the file extension alone, compared
// case-insensitively.
package extractor

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Extractor extracts text content from an uploaded document.
type Extractor interface {
	// Extract decodes data according to the extension of filename.
	Extract(filename string, data []byte) (string, error)
}

// Format is an Extractor dedicated to a set of file extensions.
type Format interface {
	Extractor
	// Extensions returns the lower-case extensions, with leading dot, this format handles.
	Extensions() []string
}

// UnsupportedFileTypeError is returned for extensions no format handles.
type UnsupportedFileTypeError struct {
	Filename string
}

func (e *UnsupportedFileTypeError) Error() string {
	return "Unsupported file type: " + e.Filename
}

// ExtractionError reports a decoding failure inside a recognized format.
// Reason is safe to show to clients; Err holds the underlying cause.
type ExtractionError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("Could not extract text from %s: %s", e.Filename, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Registry dispatches to a Format by file extension.
type Registry struct {
	formats map[string]Format
}

var _ Extractor = (*Registry)(nil)

// NewRegistry builds a registry; later formats win on duplicate extensions.
func NewRegistry(formats ...Format) *Registry {
	r := &Registry{formats: make(map[string]Format)}
	for _, f := range formats {
		for _, ext := range f.Extensions() {
			r.formats[strings.ToLower(ext)] = f
		}
	}
	return r
}

// Extract implements Extractor.
func (r *Registry) Extract(filename string, data []byte) (string, error) {
	f, ok := r.formats[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", &UnsupportedFileTypeError{Filename: filename}
	}
	return f.Extract(filename, data)
}

// Extensions lists every registered extension in sorted order.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.formats))
	for ext := range r.formats {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
