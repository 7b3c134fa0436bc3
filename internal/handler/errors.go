package handler

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	errors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// NewErrorHandler builds the fiber error handler: rich errors map to their
// carried HTTP status and text code, fiber errors keep their status, and
// everything else collapses to an opaque 500.
func NewErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			status := richErr.Code
			if status == 0 {
				status = statusFromCategory(richErr.Category)
			}

			if status >= http.StatusInternalServerError {
				logger.Error("request failed",
					"path", c.Path(),
					"error", richErr.Message,
					"category", richErr.Category,
					"details", print.MaybePrettyJSON(richErr.Metadata),
				)
				// Internal detail stays in the logs.
				return c.Status(status).JSON(errorResponse{
					Error: errorBody{Message: "Internal Server Error"},
				})
			}

			return c.Status(status).JSON(errorResponse{
				Error: errorBody{Message: richErr.Message, Code: richErr.TextCode},
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(errorResponse{
				Error: errorBody{Message: fiberErr.Message},
			})
		}

		logger.Error("request failed", "path", c.Path(), "error", err)
		return c.Status(http.StatusInternalServerError).JSON(errorResponse{
			Error: errorBody{Message: "Internal Server Error"},
		})
	}
}

func statusFromCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ValidationError wraps an ozzo validation failure so the error handler
// renders it as a 400 with the field breakdown.
func ValidationError(err error) error {
	return errors.Wrap(err, errors.CategoryValidation, err.Error()).
		WithCode(http.StatusBadRequest).
		WithTextCode("VALIDATION_FAILED")
}
