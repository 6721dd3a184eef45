package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ModelConfig holds settings for the extractive question-answering checkpoint.
type ModelConfig struct {
	Checkpoint        string
	Dir               string
	Backend           string
	TokenizerFile     string
	ONNXFile          string
	ONNXRuntimeLib    string
	InputNames        []string
	OutputNames       []string
	InferenceURL      string
	InferenceTimeout  time.Duration
	MaxSeqLen         int
	MaxContextChars   int
	SpanPolicy        string
	MaxAnswerTokens   int
	SkipSpecialTokens bool
}

// MinIOConfig holds object storage settings for MinIO.
// When Endpoint is empty, checkpoint artifacts are read from the local model directory only.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level    string
	Timezone string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost         string
	Port            string
	MaxUploadBytes  int
	MaxContextChars int
	CORSOrigins     string
	Log             LogConfig
	Model           ModelConfig
	MinIO           MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:         getEnv("APP_HOST", "localhost:8080"),
		Port:            getEnv("PORT", "8080"),
		MaxUploadBytes:  getEnvInt("MAX_UPLOAD_BYTES", 16*1024*1024),
		MaxContextChars: getEnvInt("MAX_CONTEXT_CHARS", 10000),
		CORSOrigins:     getEnv("CORS_ALLOW_ORIGINS", "*"),
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Timezone: getEnv("LOG_TIMEZONE", "UTC"),
		},
		Model: ModelConfig{
			Checkpoint:        getEnv("MODEL_CHECKPOINT", "distilbert-base-uncased-distilled-squad"),
			Dir:               getEnv("MODEL_DIR", "models"),
			Backend:           getEnv("MODEL_BACKEND", "onnx"),
			TokenizerFile:     getEnv("MODEL_TOKENIZER_FILE", "tokenizer.json"),
			ONNXFile:          getEnv("MODEL_ONNX_FILE", "model.onnx"),
			ONNXRuntimeLib:    getEnv("ONNXRUNTIME_LIB", ""),
			InputNames:        getEnvList("MODEL_INPUT_NAMES", []string{"input_ids", "attention_mask"}),
			OutputNames:       getEnvList("MODEL_OUTPUT_NAMES", []string{"start_logits", "end_logits"}),
			InferenceURL:      getEnv("MODEL_INFERENCE_URL", ""),
			InferenceTimeout:  getEnvDuration("MODEL_INFERENCE_TIMEOUT", 30*time.Second),
			MaxSeqLen:         getEnvInt("MODEL_MAX_SEQ_LEN", 512),
			MaxContextChars:   getEnvInt("MODEL_MAX_CONTEXT_CHARS", 512*3),
			SpanPolicy:        getEnv("MODEL_SPAN_POLICY", "independent"),
			MaxAnswerTokens:   getEnvInt("MODEL_MAX_ANSWER_TOKENS", 30),
			SkipSpecialTokens: getEnvBool("MODEL_SKIP_SPECIAL_TOKENS", true),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			Prefix:    getEnv("MINIO_PREFIX", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

// Location resolves the configured log timezone, falling back to UTC.
func (c LogConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

// getEnvList splits a comma-separated value, dropping empty items.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
