// Package model contains the request and response bodies of the HTTP API.
// Nothing here is persisted: every value lives for a single request.
package model

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Context string `json:"context" example:"Paris is the capital of France."`
}

// AskRequest is the body of POST /ask. The server keeps no session, so the
// client resends the full context with every question.
type AskRequest struct {
	Context  string `json:"context" example:"Paris is the capital of France."`
	Question string `json:"question" example:"What is the capital of France?"`
}

// AskResponse is returned by POST /ask.
type AskResponse struct {
	Answer string `json:"answer" example:"paris"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error" example:"Context and question are required"`
}

// HealthResponse reports model readiness.
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
	Model  string `json:"model" example:"distilbert-base-uncased-distilled-squad"`
}
