// Package qa answers questions against a context string with a pretrained
// extractive question-answering model.
//
// An Engine is built once at startup from a tokenizer and a model and is
// immutable afterwards, so a single value is shared by all request handlers.
// Every call is a pure function of its (context, question) pair.
package qa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"docqa/internal/textutil"
)

// NoAnswer is returned when the selected span decodes to an empty string.
const NoAnswer = "Could not find a specific answer in the text."

// ErrModelUnavailable is returned by every call on an engine whose model or
// tokenizer failed to load.
var ErrModelUnavailable = errors.New("model not loaded")

// InferenceError wraps a tokenizer or model failure.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return "inference failed: " + e.Err.Error()
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Encoding is a jointly encoded question/context token sequence.
type Encoding struct {
	IDs               []int
	TypeIDs           []int
	AttentionMask     []int
	SpecialTokensMask []int
}

// Len returns the number of tokens.
func (e Encoding) Len() int { return len(e.IDs) }

// truncate caps the sequence at n tokens. Context tokens are dropped from the
// end; a closing special token ([SEP]) is kept as the last position.
func (e Encoding) truncate(n int) Encoding {
	if n <= 0 || len(e.IDs) <= n {
		return e
	}
	last := len(e.IDs) - 1
	keepLast := n > 1 && last < len(e.SpecialTokensMask) && e.SpecialTokensMask[last] == 1

	cut := func(xs []int) []int {
		if len(xs) != len(e.IDs) {
			if len(xs) > n {
				return xs[:n]
			}
			return xs
		}
		out := make([]int, n)
		if keepLast {
			copy(out, xs[:n-1])
			out[n-1] = xs[last]
		} else {
			copy(out, xs[:n])
		}
		return out
	}
	return Encoding{
		IDs:               cut(e.IDs),
		TypeIDs:           cut(e.TypeIDs),
		AttentionMask:     cut(e.AttentionMask),
		SpecialTokensMask: cut(e.SpecialTokensMask),
	}
}

// Tokenizer encodes question/context pairs and decodes token ids.
type Tokenizer interface {
	EncodePair(question, context string) (Encoding, error)
	Decode(ids []int, skipSpecialTokens bool) string
}

// Scores holds per-token start and end plausibility scores.
type Scores struct {
	Start []float32
	End   []float32
}

// Model runs the QA network over an encoded sequence.
type Model interface {
	Predict(ctx context.Context, enc Encoding) (Scores, error)
}

// Answerer is the contract the HTTP layer depends on.
type Answerer interface {
	// Answer returns the best answer span for question within contextText.
	Answer(ctx context.Context, contextText, question string) (string, error)
	// Ready reports whether the model and tokenizer are loaded.
	Ready() bool
	// Checkpoint names the pretrained checkpoint backing the engine.
	Checkpoint() string
}

// Options tune pre-truncation and span decoding.
type Options struct {
	Checkpoint        string
	MaxContextChars   int
	MaxSeqLen         int
	Policy            SpanPolicy
	MaxAnswerTokens   int
	SkipSpecialTokens bool
}

// DefaultOptions returns the stock DistilBERT settings: 1536 characters of context,
// 512 tokens, independent argmax.
func DefaultOptions() Options {
	return Options{
		MaxContextChars:   512 * 3,
		MaxSeqLen:         512,
		Policy:            Independent,
		MaxAnswerTokens:   30,
		SkipSpecialTokens: true,
	}
}

// Engine is an immutable tokenizer + model pair.
type Engine struct {
	tok     Tokenizer
	model   Model
	opts    Options
	loadErr error
}

var _ Answerer = (*Engine)(nil)

// NewEngine builds an engine. A nil tokenizer or model yields an engine that
// always fails with ErrModelUnavailable.
func NewEngine(tok Tokenizer, model Model, opts Options) *Engine {
	e := &Engine{tok: tok, model: model, opts: opts}
	if tok == nil || model == nil {
		e.loadErr = errors.New("tokenizer or model is nil")
	}
	return e
}

// Unavailable returns an engine for a checkpoint that failed to load.
func Unavailable(checkpoint string, cause error) *Engine {
	if cause == nil {
		cause = errors.New("not loaded")
	}
	return &Engine{opts: Options{Checkpoint: checkpoint}, loadErr: cause}
}

// Ready implements Answerer.
func (e *Engine) Ready() bool { return e.loadErr == nil }

// Checkpoint implements Answerer.
func (e *Engine) Checkpoint() string { return e.opts.Checkpoint }

// Answer implements Answerer. With SkipSpecialTokens set (the default),
// [CLS] and [SEP] are dropped from the decoded span, so a span that covers
// only special tokens yields NoAnswer. Unset it to keep them in the answer
// text, as a plain tokenizer decode does.
func (e *Engine) Answer(ctx context.Context, contextText, question string) (string, error) {
	if e.loadErr != nil {
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, e.loadErr)
	}

	contextText = textutil.Truncate(contextText, e.opts.MaxContextChars)

	enc, err := e.tok.EncodePair(question, contextText)
	if err != nil {
		return "", &InferenceError{Err: fmt.Errorf("encode: %w", err)}
	}
	enc = enc.truncate(e.opts.MaxSeqLen)
	if enc.Len() == 0 {
		return "", &InferenceError{Err: errors.New("encode: empty token sequence")}
	}

	scores, err := e.model.Predict(ctx, enc)
	if err != nil {
		return "", &InferenceError{Err: fmt.Errorf("predict: %w", err)}
	}
	if len(scores.Start) != enc.Len() || len(scores.End) != enc.Len() {
		return "", &InferenceError{Err: fmt.Errorf("predict: got %d/%d scores for %d tokens",
			len(scores.Start), len(scores.End), enc.Len())}
	}

	start, end, ok := selectSpan(scores, enc.SpecialTokensMask, e.opts.Policy, e.opts.MaxAnswerTokens)
	var answer string
	if ok && end >= start {
		answer = strings.TrimSpace(e.tok.Decode(e.spanIDs(enc, start, end), e.opts.SkipSpecialTokens))
	}
	if answer == "" {
		return NoAnswer, nil
	}
	return answer, nil
}

// spanIDs returns the token ids of the inclusive span, without special tokens
// when they are skipped.
func (e *Engine) spanIDs(enc Encoding, start, end int) []int {
	ids := enc.IDs[start : end+1]
	if !e.opts.SkipSpecialTokens || len(enc.SpecialTokensMask) != enc.Len() {
		return ids
	}
	out := make([]int, 0, len(ids))
	for i, id := range ids {
		if enc.SpecialTokensMask[start+i] == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Close releases the model when it holds native resources.
func (e *Engine) Close() error {
	if c, ok := e.model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
