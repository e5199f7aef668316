package serverutils

import (
	"errors"
	"fmt"

	"healthlink-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message string) Response[any] {
	return Response[any]{
		Success: false,
		Message: message,
	}
}

// ValidateRequest runs struct tag validation and converts failures into 400s.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			field := validationErrors[0]
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("field '%s' failed on '%s' validation", field.Field(), field.Tag()))
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// ErrorHandlerMiddleware maps domain errors to HTTP status codes so
// controllers can simply return them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
		case errors.Is(err, service.ErrInvalidRequest),
			errors.Is(err, service.ErrInvalidParticipantSet),
			errors.Is(err, service.ErrEmptyMessageContent),
			errors.Is(err, service.ErrAttachmentTooLarge):
			status = fiber.StatusBadRequest
			message = err.Error()
		case errors.Is(err, service.ErrInvalidCredentials):
			status = fiber.StatusUnauthorized
			message = err.Error()
		case errors.Is(err, service.ErrAccessDenied):
			status = fiber.StatusForbidden
			message = err.Error()
		case errors.Is(err, service.ErrConversationNotFound),
			errors.Is(err, service.ErrFileNotFound),
			errors.Is(err, service.ErrReceiverNotFound):
			status = fiber.StatusNotFound
			message = err.Error()
		}

		return c.Status(status).JSON(ErrorResponse(message))
	}
}
