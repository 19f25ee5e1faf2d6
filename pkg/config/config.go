package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backends de almacenamiento soportados.
const (
	BackendGraph = "graph"
	BackendS3    = "s3"
	BackendFile  = "file"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Store     StoreConfig
	Graph     GraphConfig
	S3        S3Config
	File      FileConfig
	Sheets    SheetsConfig
	Columns   ColumnsConfig
	DB        DBConfig
	NATS      NATSConfig
	Telemetry TelemetryConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig selección del almacén y direccionamiento del documento.
type StoreConfig struct {
	Backend      string
	Timeout      time.Duration
	DocumentPath string
}

// GraphConfig Microsoft Graph (OneDrive) con flujo de código de dispositivo.
type GraphConfig struct {
	ClientID     string
	TenantID     string
	DriveItemID  string // si no está vacío, el documento se direcciona por ID
	BaseURL      string
	AuthorityURL string
	Scopes       []string
	TokenCache   string
}

// S3Config almacén compatible con S3.
type S3Config struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// FileConfig almacén en disco local.
type FileConfig struct {
	Dir string
}

// SheetsConfig nombres de las hojas del libro.
type SheetsConfig struct {
	Items string
	Logs  string
}

// ColumnsConfig nombres de las columnas con significado en la hoja de ítems.
type ColumnsConfig struct {
	PartRef     string
	Description string
	Quantity    string
	MinLevel    string
	MaxLevel    string
}

// DBConfig diario de ajustes opcional en PostgreSQL.
type DBConfig struct {
	DatabaseURL string // vacío = diario deshabilitado
	Migrate     bool
}

// Enabled indica si el diario está configurado.
func (c DBConfig) Enabled() bool { return c.DatabaseURL != "" }

// NATSConfig eventos de ajuste opcionales en JetStream.
type NATSConfig struct {
	URL     string // vacío = sin eventos
	Stream  string
	Subject string
}

// TelemetryConfig trazas y métricas.
type TelemetryConfig struct {
	OTLPEndpoint   string
	MetricsEnabled bool
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. No valida: llamar a Validate antes de usarla.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	timeout, err := getDuration(v, "STORE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "warehouse-tracker"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", getInt(v, "PORT", 3000)),
		},
		Store: StoreConfig{
			Backend:      strings.ToLower(getString(v, "STORE_BACKEND", BackendGraph)),
			Timeout:      timeout,
			DocumentPath: getString(v, "DOCUMENT_PATH", "warehouse-tracker.xlsx"),
		},
		Graph: GraphConfig{
			ClientID:     getString(v, "GRAPH_CLIENT_ID", getString(v, "AZURE_CLIENT_ID", "")),
			TenantID:     getString(v, "GRAPH_TENANT_ID", "common"),
			DriveItemID:  getString(v, "GRAPH_DRIVE_ITEM_ID", getString(v, "DRIVE_ITEM_ID", "")),
			BaseURL:      getString(v, "GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"),
			AuthorityURL: getString(v, "GRAPH_AUTHORITY_URL", "https://login.microsoftonline.com"),
			Scopes:       strings.Fields(getString(v, "GRAPH_SCOPES", "Files.ReadWrite offline_access")),
			TokenCache:   getString(v, "GRAPH_TOKEN_CACHE", ""),
		},
		S3: S3Config{
			Endpoint:       getString(v, "S3_ENDPOINT", ""),
			Region:         getString(v, "S3_REGION", "us-east-1"),
			Bucket:         getString(v, "S3_BUCKET", ""),
			AccessKey:      getString(v, "S3_ACCESS_KEY", ""),
			SecretKey:      getString(v, "S3_SECRET_KEY", ""),
			ForcePathStyle: getBool(v, "S3_FORCE_PATH_STYLE", true),
		},
		File: FileConfig{
			Dir: getString(v, "FILE_STORE_DIR", "."),
		},
		Sheets: SheetsConfig{
			Items: getString(v, "SHEET_ITEMS", "Sheet1"),
			Logs:  getString(v, "SHEET_LOGS", "Logs"),
		},
		Columns: ColumnsConfig{
			PartRef:     getString(v, "COLUMN_PART_REF", "Part Reference"),
			Description: getString(v, "COLUMN_DESCRIPTION", "Description"),
			Quantity:    getString(v, "COLUMN_QUANTITY", "Quantity"),
			MinLevel:    getString(v, "COLUMN_MIN_LEVEL", "Min Level"),
			MaxLevel:    getString(v, "COLUMN_MAX_LEVEL", "Max Level"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Migrate:     getBool(v, "DB_MIGRATE", true),
		},
		NATS: NATSConfig{
			URL:     getString(v, "NATS_URL", ""),
			Stream:  getString(v, "NATS_STREAM", "INVENTORY"),
			Subject: getString(v, "NATS_SUBJECT", "inventory.adjusted"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint:   getString(v, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			MetricsEnabled: getBool(v, "METRICS_ENABLED", true),
		},
	}
	return cfg, nil
}

// Validate revisa las claves obligatorias del backend elegido y los nombres de hoja.
// Los nombres de columna los valida entity.ItemColumns.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT inválido: %d", c.HTTP.Port))
	}
	if c.Store.Timeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT debe ser positivo"))
	}
	switch c.Store.Backend {
	case BackendGraph:
		if c.Graph.ClientID == "" {
			errs = append(errs, errors.New("GRAPH_CLIENT_ID requerido con STORE_BACKEND=graph"))
		}
		if c.Graph.DriveItemID == "" && c.Store.DocumentPath == "" {
			errs = append(errs, errors.New("DOCUMENT_PATH o GRAPH_DRIVE_ITEM_ID requerido"))
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET requerido con STORE_BACKEND=s3"))
		}
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			errs = append(errs, errors.New("S3_ACCESS_KEY y S3_SECRET_KEY van juntas"))
		}
	case BackendFile:
		if c.Store.DocumentPath == "" {
			errs = append(errs, errors.New("DOCUMENT_PATH requerido con STORE_BACKEND=file"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND desconocido: %q", c.Store.Backend))
	}
	if c.Sheets.Items == "" || c.Sheets.Logs == "" {
		errs = append(errs, errors.New("SHEET_ITEMS y SHEET_LOGS no pueden estar vacíos"))
	} else if c.Sheets.Items == c.Sheets.Logs {
		errs = append(errs, errors.New("SHEET_ITEMS y SHEET_LOGS deben ser distintos"))
	}
	return errors.Join(errs...)
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

// getDuration acepta "30s", "2m" o un número de segundos.
func getDuration(v *viper.Viper, key string, def time.Duration) (time.Duration, error) {
	if !v.IsSet(key) {
		return def, nil
	}
	raw := strings.TrimSpace(v.GetString(key))
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s inválido: %q", key, raw)
	}
	return d, nil
}
