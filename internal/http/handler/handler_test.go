package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docqa/internal/extractor"
	"docqa/internal/logging"
	"docqa/internal/model"
	"docqa/internal/qa"
	"docqa/internal/service"
	serviceMocks "docqa/internal/service/mocks"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
}

func discardLogger() *slog.Logger {
	return logging.New(io.Discard, time.UTC, "error")
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestUpload(t *testing.T) {
	mockSvc := new(serviceMocks.MockQAService)
	app := newTestApp()
	app.Post("/upload", Upload(mockSvc, discardLogger()))

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "notes.txt", []byte("hello world"))
		mockSvc.On("ExtractContext", mock.Anything, "notes.txt", []byte("hello world")).Return("hello world", nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result model.UploadResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "hello world", result.Context)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "No file uploaded", decodeError(t, resp))
	})

	t.Run("wrong field name", func(t *testing.T) {
		body, ct := multipartBody(t, "document", "notes.txt", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "No file uploaded", decodeError(t, resp))
	})

	t.Run("empty filename", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename=""`)
		h.Set("Content-Type", "application/octet-stream")
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		part.Write([]byte("data"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "No selected file", decodeError(t, resp))
	})

	t.Run("unsupported file type", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "report.xyz", []byte("x"))
		mockSvc.On("ExtractContext", mock.Anything, "report.xyz", mock.Anything).
			Return("", &extractor.UnsupportedFileTypeError{Filename: "report.xyz"}).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Unsupported file type: report.xyz", decodeError(t, resp))
		mockSvc.AssertExpectations(t)
	})

	t.Run("extraction error", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "broken.pdf", []byte("%PDF-garbage"))
		mockSvc.On("ExtractContext", mock.Anything, "broken.pdf", mock.Anything).
			Return("", &extractor.ExtractionError{Filename: "broken.pdf", Reason: "malformed PDF", Err: errors.New("xref not found")}).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		msg := decodeError(t, resp)
		assert.Equal(t, "Could not extract text from broken.pdf: malformed PDF", msg)
		assert.NotContains(t, msg, "xref")
	})

	t.Run("unexpected error", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "notes.txt", []byte("x"))
		mockSvc.On("ExtractContext", mock.Anything, "notes.txt", mock.Anything).
			Return("", errors.New("disk on fire")).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "File processing failed", decodeError(t, resp))
	})
}

func TestErrorHandler_EntityTooLarge(t *testing.T) {
	app := newTestApp()
	app.Post("/upload", func(c *fiber.Ctx) error {
		return fiber.ErrRequestEntityTooLarge
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/upload", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "File too large", decodeError(t, resp))
}

func TestAsk(t *testing.T) {
	mockSvc := new(serviceMocks.MockQAService)
	app := newTestApp()
	app.Post("/ask", Ask(mockSvc, discardLogger()))

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Answer", mock.Anything, "Paris is the capital of France.", "What is the capital of France?").
			Return("paris", nil).Once()

		resp := post(`{"context":"Paris is the capital of France.","question":"What is the capital of France?"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result model.AskResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "paris", result.Answer)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no answer literal is a success", func(t *testing.T) {
		mockSvc.On("Answer", mock.Anything, "abc", "xyz").Return(qa.NoAnswer, nil).Once()

		resp := post(`{"context":"abc","question":"xyz"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result model.AskResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "Could not find a specific answer in the text.", result.Answer)
	})

	t.Run("missing fields", func(t *testing.T) {
		mockSvc.On("Answer", mock.Anything, "", "x").Return("", service.ErrInputRequired).Once()

		resp := post(`{"context":"","question":"x"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Context and question are required", decodeError(t, resp))
	})

	t.Run("empty body", func(t *testing.T) {
		mockSvc.On("Answer", mock.Anything, "", "").Return("", service.ErrInputRequired).Once()

		resp := post("")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Context and question are required", decodeError(t, resp))
	})

	t.Run("invalid json", func(t *testing.T) {
		resp := post(`{"context":`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid request body", decodeError(t, resp))
	})

	t.Run("model unavailable", func(t *testing.T) {
		mockSvc.On("Answer", mock.Anything, "ctx", "q").
			Return("", fmt.Errorf("%w: tokenizer.json missing", qa.ErrModelUnavailable)).Once()

		resp := post(`{"context":"ctx","question":"q"}`)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		msg := decodeError(t, resp)
		assert.Equal(t, "Question answering failed", msg)
		assert.NotContains(t, msg, "tokenizer")
	})

	t.Run("inference error", func(t *testing.T) {
		mockSvc.On("Answer", mock.Anything, "ctx", "q2").
			Return("", &qa.InferenceError{Err: errors.New("oom")}).Once()

		resp := post(`{"context":"ctx","question":"q2"}`)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Question answering failed", decodeError(t, resp))
	})
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockQAService)
		mockSvc.On("Ready").Return(true)
		mockSvc.On("Checkpoint").Return("distilbert-base-uncased-distilled-squad")
		app := newTestApp()
		app.Get("/health", HealthCheck(mockSvc))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body model.HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "distilbert-base-uncased-distilled-squad", body.Model)
	})

	t.Run("model unavailable", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockQAService)
		mockSvc.On("Ready").Return(false)
		app := newTestApp()
		app.Get("/health", HealthCheck(mockSvc))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "Model unavailable", decodeError(t, resp))
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "docqa_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	app := fiber.New()
	app.Get("/metrics", MetricsHandler(reg))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), "docqa_test_total 1")
}

func TestRouting(t *testing.T) {
	app := newTestApp()

	mockSvc := new(serviceMocks.MockQAService)
	RegisterRoutes(app, mockSvc, prometheus.NewRegistry(), discardLogger())

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Not found", decodeError(t, resp))
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/ask", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "Method not allowed", decodeError(t, resp))
	})
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	app := newTestApp()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return errors.New("pq: connection refused at 10.0.0.3")
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/internal", nil))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", decodeError(t, resp))
}
