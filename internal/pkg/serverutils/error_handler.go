package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"neuroviz-server/internal/apperror"
	"neuroviz-server/internal/pkg/logger"
)

func statusForCode(code apperror.Code) int {
	switch code {
	case apperror.CodeValidation:
		return fiber.StatusBadRequest
	case apperror.CodeInvalidTransition:
		return fiber.StatusConflict
	case apperror.CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware converts errors escaping controllers into the
// standard response envelope. Internal errors are logged with the request
// path; client errors are returned as-is.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			status := statusForCode(appErr.Code)
			if status == fiber.StatusInternalServerError {
				log.Error("http", "request failed", map[string]interface{}{
					"path":  ctx.Path(),
					"error": err.Error(),
				})
				return ctx.Status(status).JSON(ErrorResponse("internal server error"))
			}
			return ctx.Status(status).JSON(ErrorResponse(appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		log.Error("http", "request failed", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
	}
}
