package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-tracker/internal/application/inventory"
)

// LogHandler expone la hoja de auditoría.
type LogHandler struct {
	uc *inventory.ListLogsUseCase
}

// NewLogHandler construye el handler.
func NewLogHandler(uc *inventory.ListLogsUseCase) *LogHandler {
	return &LogHandler{uc: uc}
}

// List godoc
// @Summary      Listar registros de ajuste
// @Tags         logs
// @Produce      json
// @Param        partRef  query  string  false  "Filtrar por referencia exacta"
// @Success      200  {array}   map[string]interface{}
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /logs [get]
func (h *LogHandler) List(c *fiber.Ctx) error {
	rows, err := h.uc.List(c.UserContext(), c.Query("partRef"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}
