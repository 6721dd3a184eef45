package service

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docqa/internal/extractor"
	"docqa/internal/qa"
	"docqa/internal/textutil"
)

// DefaultMaxContextChars caps the context returned by an upload.
const DefaultMaxContextChars = 10000

// QAService defines the use cases behind the HTTP API. It holds no per-client
// state: an upload returns the context to the caller, who must send it back
// with every question.
type QAService interface {
	// ExtractContext extracts the text of an uploaded document and truncates it
	// to the configured number of characters.
	ExtractContext(ctx context.Context, filename string, data []byte) (string, error)

	// Answer trims both inputs and asks the answer engine. Blank inputs fail
	// with ErrInputRequired before the engine is called.
	Answer(ctx context.Context, contextText, question string) (string, error)

	// Ready reports whether the answer engine has a loaded model.
	Ready() bool

	// Checkpoint names the model checkpoint in use.
	Checkpoint() string
}

// Options configure a QAService.
type Options struct {
	MaxContextChars int
	Metrics         *Metrics
}

type qaService struct {
	extractor       extractor.Extractor
	engine          qa.Answerer
	maxContextChars int
	metrics         *Metrics
	tracer          trace.Tracer
}

// NewQAService constructs a new QAService.
func NewQAService(ext extractor.Extractor, engine qa.Answerer, opts Options) QAService {
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = DefaultMaxContextChars
	}
	return &qaService{
		extractor:       ext,
		engine:          engine,
		maxContextChars: opts.MaxContextChars,
		metrics:         opts.Metrics,
		tracer:          otel.Tracer("docqa/internal/service"),
	}
}

func (s *qaService) ExtractContext(ctx context.Context, filename string, data []byte) (string, error) {
	_, span := s.tracer.Start(ctx, "QAService.ExtractContext", trace.WithAttributes(
		attribute.String("document.filename", filename),
		attribute.Int("document.size", len(data)),
	))
	defer span.End()

	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	text, err := s.extractor.Extract(filename, data)
	if err != nil {
		kind := KindOf(err)
		if kind == KindUnsupportedFileType {
			fileType = "unsupported"
		}
		s.metrics.extraction(fileType, kind.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())
		return "", err
	}

	s.metrics.extraction(fileType, "ok")
	span.SetAttributes(attribute.Int("document.text_length", len(text)))
	return textutil.Truncate(text, s.maxContextChars), nil
}

func (s *qaService) Answer(ctx context.Context, contextText, question string) (string, error) {
	contextText = strings.TrimSpace(contextText)
	question = strings.TrimSpace(question)
	if contextText == "" || question == "" {
		return "", ErrInputRequired
	}

	ctx, span := s.tracer.Start(ctx, "QAService.Answer", trace.WithAttributes(
		attribute.String("qa.checkpoint", s.engine.Checkpoint()),
		attribute.Int("qa.context_length", len(contextText)),
	))
	defer span.End()

	start := time.Now()
	answer, err := s.engine.Answer(ctx, contextText, question)
	if err != nil {
		kind := KindOf(err)
		s.metrics.answer(kind.String(), time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())
		return "", err
	}

	outcome := "answered"
	if answer == qa.NoAnswer {
		outcome = "no_answer"
	}
	s.metrics.answer(outcome, time.Since(start))
	span.SetAttributes(attribute.String("qa.outcome", outcome))
	return answer, nil
}

func (s *qaService) Ready() bool {
	return s.engine.Ready()
}

func (s *qaService) Checkpoint() string {
	return s.engine.Checkpoint()
}
