package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-tracker/internal/application/dto"
	"github.com/jhoicas/warehouse-tracker/internal/domain"
)

// localsError clave de Locals donde queda el error original para el log de la petición.
const localsError = "request_error"

// respondError traduce el error de dominio a status + cuerpo JSON.
// NotFound usa siempre el mensaje fijo "Item not found".
func respondError(c *fiber.Ctx, err error) error {
	c.Locals(localsError, err)

	status, code, msg := fiber.StatusInternalServerError, "INTERNAL", err.Error()
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, code, msg = fiber.StatusNotFound, "NOT_FOUND", domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrInvalidQuantity):
		status, code = fiber.StatusUnprocessableEntity, "INVALID_QUANTITY"
	case errors.Is(err, domain.ErrAuthFailure):
		code = "AUTH_FAILURE"
	case errors.Is(err, domain.ErrStoreUnavailable):
		code = "STORE_UNAVAILABLE"
	case errors.Is(err, domain.ErrDecodeFailure):
		code = "DECODE_FAILURE"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, Code: code})
}

// ErrorHandler para fiber.Config: errores no manejados (rutas inexistentes,
// panics recuperados) también responden {error, code}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "INTERNAL"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "ROUTE_NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusBadRequest:
			code = "BAD_REQUEST"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Error: fe.Message, Code: code})
	}
	c.Locals(localsError, err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error(), Code: "INTERNAL"})
}
