package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const EnvProduction = "production"

type Config struct {
	AppName                       string        `env:"APP_NAME" env-default:"fern-api"`
	AppEnv                        string        `env:"APP_ENV" env-default:"development"`
	Port                          int           `env:"PORT" env-default:"8000"`
	LogLevel                      string        `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool          `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int           `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int           `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int           `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"60"`
	ReadHeaderTimeoutSeconds      int           `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int           `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"`
	ShutdownTimeout               time.Duration `env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"15s"`
	AllowOrigins                  []string      `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string      `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	StartupMaxAttempts            int           `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Database host
	DatabaseHost string `env:"DB_HOST" env-default:"localhost"`
	// Database port
	DatabasePort int `env:"DB_PORT" env-default:"5432"`
	// Database user
	DatabaseUserName string `env:"DB_USER" env-default:"dev"`
	// Database user password
	DatabasePassword string `env:"DB_PASSWORD" env-default:"dev123"`
	// Database name
	DatabaseName string `env:"DB_NAME" env-default:"internal_tools"`
	// Database SSL Mode
	DatabaseSSLMode string `env:"DB_SSL_MODE" env-default:"disable"`
	// Max Open Conns
	DatabaseMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	// Max Idle Conns
	DatabaseMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	// Conn Max Lifetime
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
	// Longest wait for a free pooled connection
	DatabaseAcquireTimeout time.Duration `env:"DB_ACQUIRE_TIMEOUT" env-default:"3s"`
	// Health check ping timeout
	DatabasePingTimeout time.Duration `env:"DB_PING_TIMEOUT" env-default:"2s"`
	// Migration Folder Path
	DatabaseMigrationFolderPath string `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	// Database Migration Version
	DatabaseMigrationVersion int `env:"DB_MIGRATION_VERSION" env-default:"0"`
	// Database Migration Force
	DatabaseMigrationForce int `env:"DB_MIGRATION_FORCE" env-default:"0"`
	// Database Migration Auto Rollback
	DatabaseMigrationAutoRollback bool `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`
	// Run migrations when the server starts
	DatabaseAutoMigrate bool `env:"DB_AUTO_MIGRATE" env-default:"true"`

	// Publish tool lifecycle events
	KafkaEnabled bool `env:"KAFKA_ENABLED" env-default:"false"`
	// Kafka brokers (comma-separated)
	KafkaBrokers string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	// Kafka topic for tool lifecycle events
	KafkaToolEventsTopic string `env:"KAFKA_TOOL_EVENTS_TOPIC" env-default:"tool-events"`
	// Kafka write timeout
	KafkaWriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" env-default:"5s"`

	OTLPEnabled  bool   `env:"OTLP_ENABLED" env-default:"false"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	// grpc or http
	OTLPProtocol string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	OTLPInsecure bool   `env:"OTLP_INSECURE" env-default:"true"`
	// Extra export headers as key:value pairs separated by commas
	OTLPHeaders map[string]string `env:"OTLP_HEADERS"`
	OTLPTimeout time.Duration     `env:"OTLP_TIMEOUT" env-default:"10s"`

	MetricsEnabled bool `env:"METRICS_ENABLED" env-default:"true"`

	SeedFile string `env:"SEED_FILE" env-default:"db/seed/fixtures.yaml"`
}

// Load reads the configuration from the environment. A .env file in the working directory is
// applied first when present; variables already set win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return &cfg, nil
}

// DatabaseDSN renders the lib/pq keyword connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost, c.DatabasePort, c.DatabaseUserName, c.DatabasePassword, c.DatabaseName, c.DatabaseSSLMode)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}
