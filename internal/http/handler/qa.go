package handler

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docqa/internal/http/middleware"
	"docqa/internal/model"
	"docqa/internal/service"
)

// Upload godoc
// @Summary Extract the text of a document
// @Description Accepts a .pdf or .txt file and returns its text, truncated to 10000 characters.
// @Tags qa
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document (.pdf or .txt)"
// @Success 200 {object} model.UploadResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 413 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /upload [post]
func Upload(svc service.QAService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, msgNoFile)
		}

		files := form.File["file"]
		if len(files) == 0 {
			// A part with an empty filename is parsed as a plain value.
			if _, ok := form.Value["file"]; ok {
				return writeError(c, fiber.StatusBadRequest, msgNoSelectedFile)
			}
			return writeError(c, fiber.StatusBadRequest, msgNoFile)
		}
		fh := files[0]
		if strings.TrimSpace(fh.Filename) == "" {
			return writeError(c, fiber.StatusBadRequest, msgNoSelectedFile)
		}

		f, err := fh.Open()
		if err != nil {
			logger.ErrorContext(c.UserContext(), "upload_read_failed",
				"request_id", middleware.GetRequestID(c), "filename", fh.Filename, "error", err)
			return writeError(c, fiber.StatusInternalServerError, msgProcessingFailed)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			logger.ErrorContext(c.UserContext(), "upload_read_failed",
				"request_id", middleware.GetRequestID(c), "filename", fh.Filename, "error", err)
			return writeError(c, fiber.StatusInternalServerError, msgProcessingFailed)
		}

		text, err := svc.ExtractContext(c.UserContext(), fh.Filename, data)
		if err != nil {
			switch kind := service.KindOf(err); kind {
			case service.KindUnsupportedFileType, service.KindExtraction:
				logger.WarnContext(c.UserContext(), "upload_rejected",
					"request_id", middleware.GetRequestID(c), "filename", fh.Filename,
					"kind", kind.String(), "error", causeOf(err))
				return writeError(c, fiber.StatusBadRequest, err.Error())
			case service.KindBadRequest, service.KindModelUnavailable, service.KindInference, service.KindInternal:
				logger.ErrorContext(c.UserContext(), "upload_failed",
					"request_id", middleware.GetRequestID(c), "filename", fh.Filename,
					"kind", kind.String(), "error", err)
				return writeError(c, fiber.StatusInternalServerError, msgProcessingFailed)
			default:
				return writeError(c, fiber.StatusInternalServerError, msgProcessingFailed)
			}
		}

		return c.JSON(model.UploadResponse{Context: text})
	}
}

// Ask godoc
// @Summary Answer a question about a context
// @Description Runs extractive question answering over the supplied context. The literal "Could not find a specific answer in the text." means no answer was found.
// @Tags qa
// @Accept json
// @Produce json
// @Param request body model.AskRequest true "Context and question"
// @Success 200 {object} model.AskResponse
// @Failure 400 {object} model.ErrorResponse "Context and question are required; a body that is not JSON is rejected with Invalid request body"
// @Failure 500 {object} model.ErrorResponse
// @Router /ask [post]
func Ask(svc service.QAService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.AskRequest
		// An empty body reads as {} and fails the required-field check below.
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, msgInvalidBody)
			}
		}

		answer, err := svc.Answer(c.UserContext(), req.Context, req.Question)
		if err != nil {
			switch kind := service.KindOf(err); kind {
			case service.KindBadRequest:
				return writeError(c, fiber.StatusBadRequest, msgInputRequired)
			case service.KindModelUnavailable, service.KindInference, service.KindUnsupportedFileType,
				service.KindExtraction, service.KindInternal:
				logger.ErrorContext(c.UserContext(), "answer_failed",
					"request_id", middleware.GetRequestID(c), "kind", kind.String(), "error", err)
				return writeError(c, fiber.StatusInternalServerError, msgAnsweringFailed)
			default:
				return writeError(c, fiber.StatusInternalServerError, msgAnsweringFailed)
			}
		}

		return c.JSON(model.AskResponse{Answer: answer})
	}
}

// causeOf returns the innermost wrapped error, or err itself.
func causeOf(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
