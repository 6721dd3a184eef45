package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("MODEL_CHECKPOINT", "test-checkpoint")
	t.Setenv("MODEL_MAX_SEQ_LEN", "256")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MODEL_INFERENCE_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "test-checkpoint", cfg.Model.Checkpoint)
	assert.Equal(t, 256, cfg.Model.MaxSeqLen)
	assert.Equal(t, 5*time.Second, cfg.Model.InferenceTimeout)
	assert.True(t, cfg.MinIO.UseSSL)
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "MAX_CONTEXT_CHARS", "MODEL_CHECKPOINT", "MODEL_BACKEND",
		"MODEL_MAX_SEQ_LEN", "MODEL_MAX_CONTEXT_CHARS", "MODEL_SPAN_POLICY",
		"MODEL_INPUT_NAMES", "MODEL_OUTPUT_NAMES", "CORS_ALLOW_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10000, cfg.MaxContextChars)
	assert.Equal(t, "*", cfg.CORSOrigins)
	assert.Equal(t, "distilbert-base-uncased-distilled-squad", cfg.Model.Checkpoint)
	assert.Equal(t, "onnx", cfg.Model.Backend)
	assert.Equal(t, 512, cfg.Model.MaxSeqLen)
	assert.Equal(t, 1536, cfg.Model.MaxContextChars)
	assert.Equal(t, "independent", cfg.Model.SpanPolicy)
	assert.Equal(t, []string{"input_ids", "attention_mask"}, cfg.Model.InputNames)
	assert.Equal(t, []string{"start_logits", "end_logits"}, cfg.Model.OutputNames)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	t.Setenv(key, "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvDuration(key, time.Second))

	t.Setenv(key, "soon")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))
}

func TestGetEnvList(t *testing.T) {
	key := "TEST_LIST_VAR"
	def := []string{"a"}

	t.Setenv(key, " input_ids , ,attention_mask,token_type_ids ")
	assert.Equal(t, []string{"input_ids", "attention_mask", "token_type_ids"}, getEnvList(key, def))

	t.Setenv(key, " , ")
	assert.Equal(t, def, getEnvList(key, def))
}

func TestLogLocation(t *testing.T) {
	assert.Equal(t, time.UTC, LogConfig{Timezone: "Not/AZone"}.Location())

	loc := LogConfig{Timezone: "UTC"}.Location()
	assert.Equal(t, "UTC", loc.String())
}
