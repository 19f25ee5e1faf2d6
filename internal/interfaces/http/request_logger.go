package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-tracker/pkg/logger"
)

// RequestLogger registra cada petición: método, ruta, status, latencia e ID.
// Los 5xx se registran en nivel error con el error original.
func RequestLogger(log *logger.Logger) fiber.Handler {
	log = logger.OrNop(log).Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			// Deja que el ErrorHandler escriba la respuesta antes de leer el status.
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
			if err, ok := c.Locals(localsError).(error); ok {
				ev = ev.Err(err)
			}
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", requestID(c)).
			Msg("petición HTTP")
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
