package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/warehouse-tracker/internal/domain"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/domain/repository"
)

// Resultados posibles de un ajuste en warehouse_adjustments_total.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// Collectors métricas del servicio sobre un registro propio.
type Collectors struct {
	registry      *prometheus.Registry
	httpRequests  *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	adjustments   *prometheus.CounterVec
}

// New registra los colectores del servicio junto con los de Go y proceso.
func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warehouse_http_requests_total",
			Help: "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "warehouse_store_operation_duration_seconds",
			Help:    "Duración de las operaciones contra el almacén de documentos.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"backend", "operation", "result"}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warehouse_adjustments_total",
			Help: "Ajustes de cantidad por resultado.",
		}, []string{"result"}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.storeDuration,
		c.adjustments,
	)
	return c
}

// Registry expone el registro (pruebas y colectores adicionales).
func (c *Collectors) Registry() *prometheus.Registry { return c.registry }

// Handler sirve /metrics en formato de exposición de Prometheus.
func (c *Collectors) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
}

// Middleware cuenta cada petición por método, ruta registrada y status.
func (c *Collectors) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		status := ctx.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		route := ctx.Route().Path
		if route == "" {
			route = "unmatched"
		}
		c.httpRequests.WithLabelValues(ctx.Method(), route, strconv.Itoa(status)).Inc()
		return err
	}
}

// ObserveAdjustment clasifica el resultado de un ajuste.
func (c *Collectors) ObserveAdjustment(err error) {
	c.adjustments.WithLabelValues(AdjustmentResult(err)).Inc()
}

// AdjustmentResult etiqueta de resultado para un error de ajuste.
func AdjustmentResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
		return ResultInvalid
	default:
		return ResultError
	}
}

// InstrumentedStore decora un DocumentStore midiendo cada operación.
type InstrumentedStore struct {
	inner   repository.DocumentStore
	backend string
	hist    *prometheus.HistogramVec
}

var (
	_ repository.DocumentStore     = (*InstrumentedStore)(nil)
	_ repository.DocumentInspector = (*InstrumentedStore)(nil)
)

// InstrumentStore envuelve store con la etiqueta backend.
func (c *Collectors) InstrumentStore(backend string, store repository.DocumentStore) *InstrumentedStore {
	return &InstrumentedStore{inner: store, backend: backend, hist: c.storeDuration}
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.hist.WithLabelValues(s.backend, op, result).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedStore) Download(ctx context.Context, ref entity.DocumentRef) ([]byte, error) {
	start := time.Now()
	data, err := s.inner.Download(ctx, ref)
	s.observe("download", start, err)
	return data, err
}

func (s *InstrumentedStore) Upload(ctx context.Context, ref entity.DocumentRef, data []byte) error {
	start := time.Now()
	err := s.inner.Upload(ctx, ref, data)
	s.observe("upload", start, err)
	return err
}

// Stat delega si el almacén subyacente lo soporta.
func (s *InstrumentedStore) Stat(ctx context.Context, ref entity.DocumentRef) (*entity.DocumentInfo, error) {
	insp, ok := s.inner.(repository.DocumentInspector)
	if !ok {
		return nil, errors.New("el backend no expone metadatos")
	}
	start := time.Now()
	info, err := insp.Stat(ctx, ref)
	s.observe("stat", start, err)
	return info, err
}
