package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// AppError carries an HTTP status code through the service layer.
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NotFound(message string) *AppError {
	return NewAppError(fiber.StatusNotFound, message)
}

func BadRequest(message string) *AppError {
	return NewAppError(fiber.StatusBadRequest, message)
}

// ErrorHandlerMiddleware turns errors returned by downstream handlers into JSON envelopes.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := err.Error()

		var appErr *AppError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			code = appErr.Code
			message = appErr.Message
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
