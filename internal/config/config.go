package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/kv/postgres"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/repository/singletable"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	HTTPAddr     string
	Backend      string
	TableName    string
	StoreTimeout time.Duration
	LogLevel     string

	AWSRegion        string
	DynamoDBEndpoint string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RabbitMQURL   string
	RabbitMQQueue string
}

// Init loads .env files and makes viper read matching environment
// variables. Flag names use dashes, environment variables underscores.
func Init(v *viper.Viper) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_addr", "0.0.0.0:8080")
	v.SetDefault("table_backend", BackendDynamoDB)
	v.SetDefault("table_name", singletable.DefaultTableName)
	v.SetDefault("store_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("rabbitmq_queue", "votes")
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPAddr:     v.GetString("http_addr"),
		Backend:      strings.ToLower(v.GetString("table_backend")),
		TableName:    v.GetString("table_name"),
		StoreTimeout: v.GetDuration("store_timeout"),
		LogLevel:     v.GetString("log_level"),

		AWSRegion:        v.GetString("aws_region"),
		DynamoDBEndpoint: v.GetString("dynamodb_endpoint"),

		PostgresHost:     v.GetString("postgres_host"),
		PostgresPort:     v.GetString("postgres_port"),
		PostgresUser:     v.GetString("postgres_user"),
		PostgresPassword: v.GetString("postgres_password"),
		PostgresDB:       v.GetString("postgres_db"),

		RabbitMQURL:   v.GetString("rabbitmq_url"),
		RabbitMQQueue: v.GetString("rabbitmq_queue"),
	}

	switch cfg.Backend {
	case BackendDynamoDB, BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown table backend %q", cfg.Backend)
	}
	if cfg.StoreTimeout <= 0 {
		return nil, fmt.Errorf("store timeout must be positive, got %s", cfg.StoreTimeout)
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) PostgresConnString() string {
	return postgres.ConnString(c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB)
}

func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}
}

// SetupLogger installs a JSON slog handler on stderr as the default logger.
func SetupLogger(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}
