package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/warehouse-tracker/internal/application/dto"
	"github.com/jhoicas/warehouse-tracker/internal/bootstrap"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/warehouse-tracker/internal/interfaces/http"
	"github.com/jhoicas/warehouse-tracker/pkg/config"
	"github.com/jhoicas/warehouse-tracker/pkg/logger"
)

// version se inyecta con -ldflags "-X main.version=..."
var version = "dev"

// @title        Warehouse Tracker API
// @version      1.0
// @description  Inventario y auditoría de ajustes sobre un libro xlsx remoto.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Store.Backend).
		Str("version", version).
		Msg("iniciando aplicación")

	ctx := context.Background()
	shutdownTracing, err := telemetry.Init(ctx, cfg.App.Name, version, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	// Con Graph, Authenticate corre aquí: sin token válido no se levanta el servidor.
	svc, err := bootstrap.New(ctx, cfg, log, bootstrap.Options{
		Prompt:  os.Stderr,
		Sinks:   true,
		Metrics: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer svc.Close()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Warehouse Tracker API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: cfg.App.Name, Backend: cfg.Store.Backend})
	})

	deps := httpRouter.RouterDeps{
		ListItems: svc.ListItems,
		Adjust:    svc.Adjust,
		ListLogs:  svc.ListLogs,
		Log:       log,
	}
	if svc.Metrics != nil {
		deps.Metrics = svc.Metrics
	}
	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	svc.Close()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
