package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jhoicas/warehouse-tracker/internal/application/inventory"
	"github.com/jhoicas/warehouse-tracker/internal/bootstrap"
	domaininv "github.com/jhoicas/warehouse-tracker/internal/domain/inventory"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/postgres"
	"github.com/jhoicas/warehouse-tracker/pkg/config"
	"github.com/jhoicas/warehouse-tracker/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stockctl",
		Short:         "Operaciones de inventario contra el libro xlsx configurado",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newItemsCommand())
	cmd.AddCommand(newAdjustCommand())
	cmd.AddCommand(newLogsCommand())
	cmd.AddCommand(newJournalCommand())
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig lee la configuración; los logs van a stderr para no mezclarse con la salida JSON.
func loadConfig(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: cmd.ErrOrStderr()})
	return cfg, log, nil
}

func loadServices(cmd *cobra.Command, sinks bool) (*bootstrap.Services, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(commandContext(cmd), cfg, log, bootstrap.Options{
		Prompt: cmd.ErrOrStderr(),
		Sinks:  sinks,
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type validateReport struct {
	Document   string   `json:"document"`
	Backend    string   `json:"backend"`
	Name       string   `json:"name,omitempty"`
	Size       int64    `json:"size,omitempty"`
	Modified   string   `json:"modified,omitempty"`
	Columns    []string `json:"columns"`
	Items      int      `json:"items"`
	LogEntries int      `json:"logEntries"`
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Comprueba acceso al documento: metadatos, descarga y decodificación",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd, false)
			if err != nil {
				return err
			}
			defer svc.Close()
			ctx := commandContext(cmd)

			report := validateReport{
				Document: svc.Options.Ref.String(),
				Backend:  svc.Config.Store.Backend,
			}
			if svc.Inspector != nil {
				info, err := svc.Inspector.Stat(ctx, svc.Options.Ref)
				if err != nil {
					return fmt.Errorf("metadatos: %w", err)
				}
				report.Name = info.Name
				report.Size = info.Size
				if !info.ModifiedAt.IsZero() {
					report.Modified = info.ModifiedAt.UTC().Format("2006-01-02T15:04:05Z")
				}
			}

			data, err := svc.Store.Download(ctx, svc.Options.Ref)
			if err != nil {
				return fmt.Errorf("descarga: %w", err)
			}
			doc, err := svc.Codec.Decode(data)
			if err != nil {
				return fmt.Errorf("decodificación: %w", err)
			}
			if !doc.Items.Schema().Has(svc.Options.Columns.PartRef) {
				return fmt.Errorf("la hoja de ítems no tiene la columna %q", svc.Options.Columns.PartRef)
			}
			report.Columns = doc.Items.Columns()
			report.Items = doc.Items.Len()
			report.LogEntries = doc.Logs.Len()
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}

func newItemsCommand() *cobra.Command {
	var threshold, search string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "Lista los ítems, opcionalmente filtrados por umbral o referencia",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			th, err := domaininv.ParseThreshold(threshold)
			if err != nil {
				return err
			}
			svc, err := loadServices(cmd, false)
			if err != nil {
				return err
			}
			defer svc.Close()
			rows, err := svc.ListItems.List(commandContext(cmd), inventory.ListItemsQuery{Threshold: th, Search: search})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&threshold, "threshold", "", "none | low | high")
	cmd.Flags().StringVar(&search, "q", "", "Búsqueda por referencia (sin distinguir mayúsculas)")
	return cmd
}

func newAdjustCommand() *cobra.Command {
	var (
		user  string
		delta int64
	)

	cmd := &cobra.Command{
		Use:   "adjust <partRef> [delta]",
		Short: "Suma delta a la cantidad del ítem y registra el ajuste",
		Example: `  stockctl adjust A1 5 --user ana
  stockctl adjust A1 --delta -2 --user bob
  stockctl adjust --user bob A1 -- -2`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deltaSet := cmd.Flags().Changed("delta")
			switch {
			case len(args) == 2 && deltaSet:
				return errors.New("delta indicado dos veces (argumento y --delta)")
			case len(args) == 2:
				n, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("delta debe ser entero: %q", args[1])
				}
				delta = n
			case !deltaSet:
				return errors.New("delta requerido")
			}

			svc, err := loadServices(cmd, true)
			if err != nil {
				return err
			}
			defer svc.Close()
			out, err := svc.Adjust.Adjust(commandContext(cmd), inventory.AdjustInput{
				PartRef: args[0],
				Delta:   delta,
				User:    user,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Usuario que firma el ajuste (texto libre)")
	cmd.Flags().Int64Var(&delta, "delta", 0, "Delta entero; alternativa al argumento posicional para valores negativos")
	return cmd
}

func newLogsCommand() *cobra.Command {
	var partRef string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Lista los registros de la hoja Logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd, false)
			if err != nil {
				return err
			}
			defer svc.Close()
			rows, err := svc.ListLogs.List(commandContext(cmd), partRef)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&partRef, "part-ref", "", "Filtrar por referencia exacta")
	return cmd
}

func newJournalCommand() *cobra.Command {
	var (
		partRef string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Consulta el diario de ajustes en PostgreSQL (requiere DATABASE_URL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.DB.Enabled() {
				return errors.New("DATABASE_URL no configurada")
			}
			ctx := commandContext(cmd)
			pool, err := postgres.NewPool(ctx, cfg.DB.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			recs, err := postgres.NewAdjustmentJournalRepository(pool).ListByPartRef(ctx, partRef, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}

	cmd.Flags().StringVar(&partRef, "part-ref", "", "Filtrar por referencia exacta")
	cmd.Flags().IntVar(&limit, "limit", postgres.DefaultJournalLimit, "Máximo de registros, más recientes primero")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones del diario de ajustes (goose up)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.DB.Enabled() {
				return errors.New("DATABASE_URL no configurada")
			}
			ctx := commandContext(cmd)
			pool, err := postgres.NewPool(ctx, cfg.DB.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
			log.Info().Msg("migraciones aplicadas")
			return nil
		},
	}
}
