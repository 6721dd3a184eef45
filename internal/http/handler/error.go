package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docqa/internal/model"
)

// Client-facing messages. Internal causes are logged, never returned.
const (
	msgNoFile           = "No file uploaded"
	msgNoSelectedFile   = "No selected file"
	msgProcessingFailed = "File processing failed"
	msgInputRequired    = "Context and question are required"
	msgInvalidBody      = "Invalid request body"
	msgAnsweringFailed  = "Question answering failed"
	msgModelUnavailable = "Model unavailable"
	msgBadRequest       = "Bad request"
	msgNotFound         = "Not found"
	msgMethodNotAllowed = "Method not allowed"
	msgEntityTooLarge   = "File too large"
	msgInternalError    = "Internal server error"
)

// writeError writes the flat JSON error body {"error": message}.
func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(model.ErrorResponse{Error: message})
}

// ErrorHandler returns a Fiber global error handler that renders framework
// errors in the same shape as handler errors.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, msgBadRequest)
		case fiber.StatusNotFound:
			return writeError(c, status, msgNotFound)
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, msgMethodNotAllowed)
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, msgEntityTooLarge)
		default:
			return writeError(c, fiber.StatusInternalServerError, msgInternalError)
		}
	}
}
