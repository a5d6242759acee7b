package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"portfolio-catalog/internal/domain"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler turns every error into a short, user-readable JSON body. Server-side
// failures are logged with the trace id returned to the client.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, errorCode, message := classify(err)
		traceID := uuid.New().String()[:8]

		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				"trace_id", traceID,
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err,
			)
		}

		return c.Status(code).JSON(ErrorResponse{
			Code:    errorCode,
			Message: message,
			TraceID: traceID,
		})
	}
}

func classify(err error) (int, string, string) {
	var fiberErr *fiber.Error
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErrorCode(fiberErr.Code), fiberErr.Message
	case errors.As(err, &validationErr):
		return fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", validationErr.Reason
	case errors.Is(err, domain.ErrMediaNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", "Media not found"
	case domain.IsRemoteReadError(err):
		return fiber.StatusServiceUnavailable, "REMOTE_READ_ERROR", "The catalog is temporarily unavailable. Please try again."
	case domain.IsUploadError(err):
		return fiber.StatusBadGateway, "UPLOAD_ERROR", "The file could not be uploaded. Please try again."
	case domain.IsPersistError(err):
		return fiber.StatusInternalServerError, "PERSIST_ERROR", "The change could not be saved. Please try again."
	}
	return fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
}

func fiberErrorCode(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	case fiber.StatusServiceUnavailable:
		return "UNAVAILABLE"
	}
	if code >= fiber.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return "ERROR"
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func NotFound(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusNotFound, message)
}

func ServiceUnavailable(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusServiceUnavailable, message)
}
