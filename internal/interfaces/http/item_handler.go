package http

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-tracker/internal/application/dto"
	"github.com/jhoicas/warehouse-tracker/internal/application/inventory"
	"github.com/jhoicas/warehouse-tracker/internal/domain"
	domaininv "github.com/jhoicas/warehouse-tracker/internal/domain/inventory"
)

// AdjustmentObserver recibe el resultado de cada ajuste (métricas).
type AdjustmentObserver interface {
	ObserveAdjustment(err error)
}

// ItemHandler maneja las peticiones HTTP de ítems y ajustes de cantidad.
type ItemHandler struct {
	list     *inventory.ListItemsUseCase
	adjust   *inventory.AdjustQuantityUseCase
	observer AdjustmentObserver
}

// NewItemHandler construye el handler. observer puede ser nil.
func NewItemHandler(list *inventory.ListItemsUseCase, adjust *inventory.AdjustQuantityUseCase, observer AdjustmentObserver) *ItemHandler {
	return &ItemHandler{list: list, adjust: adjust, observer: observer}
}

// List godoc
// @Summary      Listar ítems
// @Description  Descarga el documento en vivo y devuelve las filas de la hoja de ítems.
//
//	low: Quantity < Min Level; high: Quantity > Max Level. Filas con valores no numéricos se excluyen de ambos.
//
// @Tags         items
// @Produce      json
// @Param        threshold  query  string  false  "none | low | high"
// @Param        q          query  string  false  "Búsqueda por referencia (sin distinguir mayúsculas)"
// @Success      200  {array}   map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	threshold, err := domaininv.ParseThreshold(c.Query("threshold"))
	if err != nil {
		return respondError(c, err)
	}
	rows, err := h.list.List(c.UserContext(), inventory.ListItemsQuery{
		Threshold: threshold,
		Search:    c.Query("q"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}

// Get godoc
// @Summary      Obtener ítem por referencia
// @Tags         items
// @Produce      json
// @Param        partRef  path  string  true  "Referencia exacta (Part Reference)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /items/{partRef} [get]
func (h *ItemHandler) Get(c *fiber.Ctx) error {
	partRef, err := partRefParam(c)
	if err != nil {
		return respondError(c, err)
	}
	row, err := h.list.Get(c.UserContext(), partRef)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(row)
}

// Adjust godoc
// @Summary      Ajustar cantidad
// @Description  Suma delta a la cantidad del ítem y agrega un registro a la hoja Logs.
//
//	Sin bloqueo: dos ajustes simultáneos sobre el mismo documento pueden perder uno de ellos.
//
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        partRef  path  string             true  "Referencia exacta (Part Reference)"
// @Param        body     body  dto.AdjustRequest  true  "delta (entero, puede ser negativo) y user"
// @Success      200  {object}  dto.AdjustResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /items/{partRef}/adjust [post]
func (h *ItemHandler) Adjust(c *fiber.Ctx) error {
	out, err := h.doAdjust(c)
	if h.observer != nil {
		h.observer.ObserveAdjustment(err)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *ItemHandler) doAdjust(c *fiber.Ctx) (*dto.AdjustResponse, error) {
	partRef, err := partRefParam(c)
	if err != nil {
		return nil, err
	}
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return nil, fmt.Errorf("%w: cuerpo inválido, se espera {\"delta\": entero, \"user\": texto}", domain.ErrInvalidInput)
	}
	if in.Delta == nil {
		return nil, fmt.Errorf("%w: delta requerido", domain.ErrInvalidInput)
	}
	return h.adjust.Adjust(c.UserContext(), inventory.AdjustInput{
		PartRef: partRef,
		Delta:   *in.Delta,
		User:    in.User,
	})
}

// partRefParam devuelve el parámetro de ruta decodificado (admite "/" y espacios codificados).
func partRefParam(c *fiber.Ctx) (string, error) {
	ref, err := url.PathUnescape(c.Params("partRef"))
	if err != nil {
		return "", fmt.Errorf("%w: partRef mal codificado", domain.ErrInvalidInput)
	}
	return ref, nil
}
