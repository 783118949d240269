package serverutils

import (
	"errors"

	"storyspark-be/internal/repository/memory"
	"storyspark-be/pkg/generation"
	"storyspark-be/pkg/inspiration"
	"storyspark-be/pkg/store"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// envelope with a matching status code.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status, body := MapError(err)
		return ctx.Status(status).JSON(body)
	}
}

// MapError picks the status code and envelope for a handler error.
func MapError(err error) (int, BaseResponse[any]) {
	var (
		reqErr     *RequestValidationError
		validErr   *inspiration.ValidationError
		assetErr   *inspiration.AssetReadError
		failure    *generation.Failure
		fiberError *fiber.Error
	)

	switch {
	case errors.As(err, &reqErr):
		resp := ErrorResponse(fiber.StatusUnprocessableEntity, "Invalid request")
		resp.Errors = reqErr.Fields
		return fiber.StatusUnprocessableEntity, resp
	case errors.As(err, &validErr):
		resp := ErrorResponse(fiber.StatusUnprocessableEntity, validErr.Message)
		resp.Errors = map[string]string{validErr.Field: validErr.Message}
		return fiber.StatusUnprocessableEntity, resp
	case errors.As(err, &assetErr):
		resp := ErrorResponse(fiber.StatusBadRequest, assetErr.Message)
		resp.Errors = map[string]string{"file": assetErr.Name}
		return fiber.StatusBadRequest, resp
	case errors.Is(err, generation.ErrIdeasInFlight), errors.Is(err, generation.ErrPlanInFlight):
		return fiber.StatusConflict, ErrorResponse(fiber.StatusConflict, err.Error())
	case errors.As(err, &failure):
		return fiber.StatusBadGateway, ErrorResponse(fiber.StatusBadGateway, failure.Message)
	case errors.Is(err, store.ErrSessionNotFound), errors.Is(err, memory.ErrPreviewNotFound):
		return fiber.StatusNotFound, ErrorResponse(fiber.StatusNotFound, err.Error())
	case errors.As(err, &fiberError):
		return fiberError.Code, ErrorResponse(fiberError.Code, fiberError.Message)
	default:
		return fiber.StatusInternalServerError, ErrorResponse(fiber.StatusInternalServerError, "Internal server error")
	}
}
