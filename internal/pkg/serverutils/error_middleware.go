package serverutils

import (
	"errors"

	"askalma-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler maps domain errors onto HTTP statuses for fiber's global
// error handler.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError

		var appErr *AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case CodeMalformedQuery:
				status = fiber.StatusBadRequest
			case CodeNotFound:
				status = fiber.StatusNotFound
			case CodeTransientDependency:
				status = fiber.StatusServiceUnavailable
			}
			return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			return ctx.Status(status).JSON(ErrorResponse(status, fiberErr.Message))
		}

		log.Error("http", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(status).JSON(ErrorResponse(status, "Internal server error"))
	}
}
