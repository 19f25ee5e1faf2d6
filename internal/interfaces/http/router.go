package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/jhoicas/warehouse-tracker/internal/application/inventory"
	"github.com/jhoicas/warehouse-tracker/pkg/logger"
)

// MetricsRecorder colectores expuestos por el router (opcional).
type MetricsRecorder interface {
	AdjustmentObserver
	Middleware() fiber.Handler
	Handler() fiber.Handler
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ListItems *inventory.ListItemsUseCase
	Adjust    *inventory.AdjustQuantityUseCase
	ListLogs  *inventory.ListLogsUseCase
	Metrics   MetricsRecorder // nil = sin /metrics
	Log       *logger.Logger
}

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))

	var observer AdjustmentObserver
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", deps.Metrics.Handler())
		observer = deps.Metrics
	}
	app.Use(RequestLogger(deps.Log))

	itemHandler := NewItemHandler(deps.ListItems, deps.Adjust, observer)
	app.Get("/items", itemHandler.List)
	app.Get("/items/:partRef", itemHandler.Get)
	app.Post("/items/:partRef/adjust", itemHandler.Adjust)

	logHandler := NewLogHandler(deps.ListLogs)
	app.Get("/logs", logHandler.List)
}
