package api

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"rag/extract"
	"rag/service"
	"rag/types"
)

// ErrorHandler maps the error taxonomy onto status codes: validation
// failures are client faults, unknown ids are 404, everything else is a
// server fault with the cause kept in the message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiError, ok := err.(Error); ok {
		return c.Status(apiError.Code).JSON(apiError)
	}
	if valError, ok := err.(types.ValidationError); ok {
		return c.Status(valError.Status).JSON(valError)
	}

	var apiError Error
	switch {
	case errors.Is(err, service.ErrNotFound):
		apiError = NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoContent), errors.Is(err, extract.ErrUnsupportedFormat):
		apiError = NewError(fiber.StatusBadRequest, err.Error())
	default:
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			apiError = NewError(fiberErr.Code, fiberErr.Message)
		} else {
			apiError = NewError(fiber.StatusInternalServerError, err.Error())
		}
	}

	if apiError.Code >= fiber.StatusInternalServerError {
		slog.Error("request failed", "code", apiError.Code, "error", apiError.Message)
	}
	return c.Status(apiError.Code).JSON(apiError)
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid request",
	}
}

func ErrNotFound[T any](arg T, resource string) Error {
	return Error{
		Code:    fiber.StatusNotFound,
		Message: fmt.Sprintf("%s with %v not found", resource, arg),
	}
}
