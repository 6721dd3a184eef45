package qa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"docqa/internal/config"
	"docqa/internal/storage"
)

const (
	BackendONNX   = "onnx"
	BackendKServe = "kserve"
)

// Swapped in tests to avoid native libraries and real checkpoint files.
var (
	loadTokenizer = func(path string) (Tokenizer, error) {
		return LoadTokenizer(path)
	}
	newONNXModel = func(modelPath, libPath string, inputs, outputs []string) (Model, error) {
		return NewONNXModel(modelPath, libPath, inputs, outputs)
	}
)

// Artifacts locates a checkpoint's files, optionally mirrored from object storage.
type Artifacts struct {
	Dir    string
	Store  storage.Storage
	Prefix string
}

// Load builds the engine described by cfg. Load never returns a nil engine:
// on failure it returns an unavailable engine together with the cause, so
// callers can keep serving requests that do not need the model.
func Load(ctx context.Context, cfg config.ModelConfig, art Artifacts, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	eng, err := load(ctx, cfg, art, logger)
	if err != nil {
		logger.Error("model_load_failed",
			"component", "qa",
			"checkpoint", cfg.Checkpoint,
			"backend", cfg.Backend,
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return Unavailable(cfg.Checkpoint, err), err
	}

	logger.Info("model_loaded",
		"component", "qa",
		"checkpoint", cfg.Checkpoint,
		"backend", cfg.Backend,
		"span_policy", eng.opts.Policy.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return eng, nil
}

func load(ctx context.Context, cfg config.ModelConfig, art Artifacts, logger *slog.Logger) (*Engine, error) {
	if cfg.Checkpoint == "" {
		return nil, fmt.Errorf("model checkpoint is required")
	}
	policy, err := ParseSpanPolicy(cfg.SpanPolicy)
	if err != nil {
		return nil, err
	}

	files := []string{cfg.TokenizerFile}
	switch cfg.Backend {
	case BackendONNX:
		files = append(files, cfg.ONNXFile)
	case BackendKServe:
	default:
		return nil, fmt.Errorf("unknown model backend %q", cfg.Backend)
	}

	dir := filepath.Join(art.Dir, cfg.Checkpoint)
	if art.Store != nil {
		for _, f := range files {
			key := path.Join(art.Prefix, cfg.Checkpoint, f)
			if err := syncArtifact(ctx, art.Store, key, filepath.Join(dir, f), logger); err != nil {
				return nil, err
			}
		}
	}

	tok, err := loadTokenizer(filepath.Join(dir, cfg.TokenizerFile))
	if err != nil {
		return nil, err
	}

	var model Model
	switch cfg.Backend {
	case BackendONNX:
		model, err = newONNXModel(filepath.Join(dir, cfg.ONNXFile), cfg.ONNXRuntimeLib, cfg.InputNames, cfg.OutputNames)
		if err != nil {
			return nil, err
		}
	case BackendKServe:
		remote, err := NewRemoteModel(RemoteConfig{
			BaseURL: cfg.InferenceURL,
			Model:   cfg.Checkpoint,
			Inputs:  cfg.InputNames,
			Outputs: cfg.OutputNames,
			Timeout: cfg.InferenceTimeout,
		})
		if err != nil {
			return nil, err
		}
		if err := remote.Ready(ctx); err != nil {
			return nil, err
		}
		model = remote
	}

	return NewEngine(tok, model, Options{
		Checkpoint:        cfg.Checkpoint,
		MaxContextChars:   cfg.MaxContextChars,
		MaxSeqLen:         cfg.MaxSeqLen,
		Policy:            policy,
		MaxAnswerTokens:   cfg.MaxAnswerTokens,
		SkipSpecialTokens: cfg.SkipSpecialTokens,
	}), nil
}

// syncArtifact downloads key to dst unless a local file of the same size exists.
func syncArtifact(ctx context.Context, store storage.Storage, key, dst string, logger *slog.Logger) error {
	info, err := store.Stat(ctx, key)
	if err != nil {
		return fmt.Errorf("stat artifact %s: %w", key, err)
	}
	if fi, err := os.Stat(dst); err == nil && fi.Size() == info.Size {
		logger.Debug("artifact_cached", "component", "qa", "key", key, "path", dst)
		return nil
	}

	rc, _, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get artifact %s: %w", key, err)
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, rc)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("download artifact %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("install artifact %s: %w", key, err)
	}

	logger.Info("artifact_downloaded", "component", "qa", "key", key, "path", dst, "bytes", n)
	return nil
}
