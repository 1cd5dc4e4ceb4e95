package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable, e.g. MEMBERSEARCH_DB_HOST.
const EnvPrefix = "MEMBERSEARCH"

// Driver names accepted in MEMBERSEARCH_DB_DRIVER.
const (
	DriverPGXPool = "pgxpool"
	DriverSQLDB   = "sqldb"
	DriverSQLX    = "sqlx"
	DriverSQLite  = "sqlite"
)

// Config is the configuration of the membersearch binary.
type Config struct {
	DB       DBConfig     `envconfig:"DB"`
	Server   ServerConfig `envconfig:"SERVER"`
	Search   SearchConfig `envconfig:"SEARCH"`
	OTel     OTelConfig   `envconfig:"OTEL"`
	LogLevel string       `envconfig:"LOG_LEVEL" default:"info"`
}

// DBConfig holds the store connection settings.
type DBConfig struct {
	Driver          string        `envconfig:"DRIVER" default:"pgxpool"`
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            string        `envconfig:"PORT" default:"5432"`
	User            string        `envconfig:"USER" default:"membersearch"`
	Password        string        `envconfig:"PASSWORD" default:"membersearch"`
	Name            string        `envconfig:"NAME" default:"membersearch"`
	SSLMode         string        `envconfig:"SSLMODE" default:"disable"`
	ReplicaHost     string        `envconfig:"REPLICA_HOST"`
	ReplicaPort     string        `envconfig:"REPLICA_PORT" default:"5432"`
	MaxConns        int32         `envconfig:"MAX_CONNS" default:"25"`
	MinConns        int32         `envconfig:"MIN_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CONN_MAX_IDLE_TIME" default:"5m"`
	ConnectTimeout  time.Duration `envconfig:"CONNECT_TIMEOUT" default:"5s"`
	SQLitePath      string        `envconfig:"SQLITE_PATH" default:"membersearch.db"`
	MemberTable     string        `envconfig:"MEMBER_TABLE" default:"member"`
	TeamTable       string        `envconfig:"TEAM_TABLE" default:"team"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
}

// SearchConfig selects the search strategies.
type SearchConfig struct {
	CountStrategy    string `envconfig:"COUNT_STRATEGY" default:"skip"`
	FilterStrategy   string `envconfig:"FILTER_STRATEGY" default:"fragments"`
	DefaultPageLimit int    `envconfig:"DEFAULT_PAGE_LIMIT" default:"20"`
	MaxPageLimit     int    `envconfig:"MAX_PAGE_LIMIT" default:"1000"`
	ReadFromReplica  bool   `envconfig:"READ_FROM_REPLICA" default:"false"`
}

// OTelConfig configures the OpenTelemetry exporters. An empty endpoint disables them.
type OTelConfig struct {
	Endpoint       string        `envconfig:"ENDPOINT"`
	Insecure       bool          `envconfig:"INSECURE" default:"true"`
	ServiceName    string        `envconfig:"SERVICE_NAME" default:"membersearch"`
	ServiceVersion string        `envconfig:"SERVICE_VERSION" default:"dev"`
	Environment    string        `envconfig:"ENVIRONMENT" default:"development"`
	MetricInterval time.Duration `envconfig:"METRIC_INTERVAL" default:"15s"`
}

// Load reads the configuration from MEMBERSEARCH_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverPGXPool, DriverSQLDB, DriverSQLX, DriverSQLite:
	default:
		return fmt.Errorf("invalid config: unknown db driver %q", c.DB.Driver)
	}

	if c.Search.DefaultPageLimit < 1 {
		return fmt.Errorf("invalid config: default page limit must be at least 1, got %d", c.Search.DefaultPageLimit)
	}

	if c.Search.MaxPageLimit < c.Search.DefaultPageLimit {
		return fmt.Errorf("invalid config: max page limit %d is below default page limit %d",
			c.Search.MaxPageLimit, c.Search.DefaultPageLimit)
	}

	return nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Addr is the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// DSN returns the PostgreSQL connection string of the primary.
func (d DBConfig) DSN() string {
	return d.dsn(d.Host, d.Port)
}

// ReplicaDSN returns the PostgreSQL connection string of the replica, empty if none is configured.
func (d DBConfig) ReplicaDSN() string {
	if d.ReplicaHost == "" {
		return ""
	}

	return d.dsn(d.ReplicaHost, d.ReplicaPort)
}

// Dialect is the SQL dialect matching the driver.
func (d DBConfig) Dialect() string {
	if d.Driver == DriverSQLite {
		return "sqlite3"
	}

	return "postgres"
}

func (d DBConfig) dsn(host, port string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}

	return u.String()
}
