// Package bootstrap arma las dependencias comunes de la API y del CLI a partir de la configuración.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/warehouse-tracker/internal/application/inventory"
	"github.com/jhoicas/warehouse-tracker/internal/application/ports"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/domain/repository"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/filestore"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/graph"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/metrics"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/nats"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/postgres"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/s3"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/xlsx"
	"github.com/jhoicas/warehouse-tracker/pkg/config"
	"github.com/jhoicas/warehouse-tracker/pkg/logger"
)

// Options ajustes del arranque.
type Options struct {
	Prompt  io.Writer // destino del mensaje del código de dispositivo (os.Stderr si nil)
	Sinks   bool      // conectar diario PostgreSQL y eventos NATS si están configurados
	Metrics bool      // instrumentar el store y exponer colectores
	Tokens  ports.TokenProvider
	Clock   func() time.Time
}

// Services dependencias ya construidas.
type Services struct {
	Config    *config.Config
	Log       *logger.Logger
	Store     repository.DocumentStore
	Inspector repository.DocumentInspector // nil si el backend no expone metadatos
	Codec     *xlsx.Codec
	Options   inventory.Options
	Metrics   *metrics.Collectors // nil si deshabilitado
	Pool      *pgxpool.Pool       // nil sin DATABASE_URL
	Journal   *postgres.AdjustmentJournalRepo

	ListItems *inventory.ListItemsUseCase
	Adjust    *inventory.AdjustQuantityUseCase
	ListLogs  *inventory.ListLogsUseCase

	publisher *nats.Publisher
}

// New valida la configuración y construye store, codec, sinks y casos de uso.
// Con STORE_BACKEND=graph se autentica antes de devolver: sin token no hay servicio.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*Services, error) {
	log = logger.OrNop(log)
	cols := entity.ItemColumns{
		PartRef:     cfg.Columns.PartRef,
		Description: cfg.Columns.Description,
		Quantity:    cfg.Columns.Quantity,
		MinLevel:    cfg.Columns.MinLevel,
		MaxLevel:    cfg.Columns.MaxLevel,
	}
	if err := errors.Join(cfg.Validate(), cols.Validate()); err != nil {
		return nil, fmt.Errorf("configuración inválida: %w", err)
	}

	s := &Services{
		Config: cfg,
		Log:    log,
		Codec:  xlsx.NewCodec(cfg.Sheets.Items, cfg.Sheets.Logs),
		Options: inventory.Options{
			Ref:     DocumentRef(cfg),
			Columns: cols,
		},
	}

	store, err := buildStore(ctx, cfg, log, opts)
	if err != nil {
		return nil, err
	}
	s.Store = store
	if opts.Metrics && cfg.Telemetry.MetricsEnabled {
		s.Metrics = metrics.New()
		s.Store = s.Metrics.InstrumentStore(cfg.Store.Backend, store)
	}
	if insp, ok := s.Store.(repository.DocumentInspector); ok {
		s.Inspector = insp
	}

	var sinks []ports.AdjustmentSink
	if opts.Sinks {
		sinks, err = s.connectSinks(ctx)
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	s.ListItems = inventory.NewListItemsUseCase(s.Store, s.Codec, s.Options)
	s.ListLogs = inventory.NewListLogsUseCase(s.Store, s.Codec, s.Options)
	s.Adjust = inventory.NewAdjustQuantityUseCase(s.Store, s.Codec, s.Options, log, sinks...)
	if opts.Clock != nil {
		s.Adjust.WithClock(opts.Clock)
	}
	return s, nil
}

// DocumentRef direcciona el documento: el ID de Graph tiene prioridad sobre la ruta.
func DocumentRef(cfg *config.Config) entity.DocumentRef {
	ref := entity.DocumentRef{Path: cfg.Store.DocumentPath}
	if cfg.Store.Backend == config.BackendGraph {
		ref.ID = cfg.Graph.DriveItemID
	}
	return ref
}

func buildStore(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (repository.DocumentStore, error) {
	switch cfg.Store.Backend {
	case config.BackendGraph:
		tokens := opts.Tokens
		if tokens == nil {
			prompt := opts.Prompt
			if prompt == nil {
				prompt = os.Stderr
			}
			cred := graph.NewDeviceCredential(graph.CredentialOptions{
				ClientID:     cfg.Graph.ClientID,
				TenantID:     cfg.Graph.TenantID,
				Scopes:       cfg.Graph.Scopes,
				AuthorityURL: cfg.Graph.AuthorityURL,
				CachePath:    cfg.Graph.TokenCache,
				Prompt:       prompt,
			}, log)
			if err := cred.Authenticate(ctx); err != nil {
				return nil, err
			}
			tokens = cred
		}
		return graph.NewDriveStore(cfg.Graph.BaseURL, tokens, cfg.Store.Timeout), nil
	case config.BackendS3:
		return s3.NewStore(ctx, s3.Options{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
			Timeout:        cfg.Store.Timeout,
		})
	case config.BackendFile:
		return filestore.New(cfg.File.Dir), nil
	default:
		return nil, fmt.Errorf("STORE_BACKEND desconocido: %q", cfg.Store.Backend)
	}
}

// connectSinks abre el diario y el publicador. Un fallo al conectar es fatal;
// una vez en marcha, los fallos de registro solo se advierten.
func (s *Services) connectSinks(ctx context.Context) ([]ports.AdjustmentSink, error) {
	var sinks []ports.AdjustmentSink
	if s.Config.DB.Enabled() {
		if err := s.OpenJournal(ctx); err != nil {
			return nil, err
		}
		sinks = append(sinks, s.Journal)
	}
	if s.Config.NATS.URL != "" {
		pub, err := nats.NewPublisher(s.Config.NATS.URL, s.Config.NATS.Stream, s.Config.NATS.Subject)
		if err != nil {
			return nil, err
		}
		s.publisher = pub
		sinks = append(sinks, pub)
		s.Log.Info().Str("stream", s.Config.NATS.Stream).Str("subject", s.Config.NATS.Subject).Msg("eventos NATS habilitados")
	}
	return sinks, nil
}

// OpenJournal conecta el diario PostgreSQL (y migra si DB_MIGRATE). Idempotente.
func (s *Services) OpenJournal(ctx context.Context) error {
	if s.Journal != nil {
		return nil
	}
	if !s.Config.DB.Enabled() {
		return errors.New("DATABASE_URL no configurada")
	}
	pool, err := postgres.NewPool(ctx, s.Config.DB.DatabaseURL)
	if err != nil {
		return err
	}
	if s.Config.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return err
		}
	}
	s.Pool = pool
	s.Journal = postgres.NewAdjustmentJournalRepository(pool)
	s.Log.Info().Msg("diario de ajustes en PostgreSQL habilitado")
	return nil
}

// Close libera conexiones externas.
func (s *Services) Close() {
	if s.publisher != nil {
		s.publisher.Close()
		s.publisher = nil
	}
	if s.Pool != nil {
		s.Pool.Close()
		s.Pool = nil
	}
}
