package service

import (
	"errors"

	"docqa/internal/extractor"
	"docqa/internal/qa"
)

// ErrInputRequired is returned when the context or question is blank.
var ErrInputRequired = errors.New("context and question are required")

// Kind classifies errors crossing the service boundary so the HTTP layer can
// map each one to a status code without inspecting concrete types.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnsupportedFileType
	KindExtraction
	KindModelUnavailable
	KindInference
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnsupportedFileType:
		return "unsupported_file_type"
	case KindExtraction:
		return "extraction_error"
	case KindModelUnavailable:
		return "model_unavailable"
	case KindInference:
		return "inference_error"
	default:
		return "internal"
	}
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	var (
		unsupported *extractor.UnsupportedFileTypeError
		extraction  *extractor.ExtractionError
		inference   *qa.InferenceError
	)
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInputRequired):
		return KindBadRequest
	case errors.As(err, &unsupported):
		return KindUnsupportedFileType
	case errors.As(err, &extraction):
		return KindExtraction
	case errors.Is(err, qa.ErrModelUnavailable):
		return KindModelUnavailable
	case errors.As(err, &inference):
		return KindInference
	default:
		return KindInternal
	}
}
