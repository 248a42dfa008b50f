package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "foodgram-dev-secret"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost      string        `koanf:"server_host"`
	ServerPort      string        `koanf:"server_port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// Database configuration
	DBDriver          string        `koanf:"db_driver"`
	DBHost            string        `koanf:"db_host"`
	DBPort            string        `koanf:"db_port"`
	DBUser            string        `koanf:"db_user"`
	DBPassword        string        `koanf:"db_password"`
	DBName            string        `koanf:"db_name"`
	DBSSLMode         string        `koanf:"db_ssl_mode"`
	DBPath            string        `koanf:"db_path"`
	DBMaxOpenConns    int           `koanf:"db_max_open_conns"`
	DBMaxIdleConns    int           `koanf:"db_max_idle_conns"`
	DBConnMaxLifetime time.Duration `koanf:"db_conn_max_lifetime"`
	AutoMigrate       bool          `koanf:"auto_migrate"`
	MigrationsDir     string        `koanf:"migrations_dir"`

	// Redis configuration; an empty RedisHost and RedisURL disables Redis.
	RedisHost     string `koanf:"redis_host"`
	RedisPort     string `koanf:"redis_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisURL      string `koanf:"redis_url"`

	// Auth
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// Image storage: "local" or "s3"
	StorageBackend  string        `koanf:"storage_backend"`
	MediaRoot       string        `koanf:"media_root"`
	MediaURL        string        `koanf:"media_url"`
	S3BucketName    string        `koanf:"s3_bucket_name"`
	AWSRegion       string        `koanf:"aws_region"`
	S3Endpoint      string        `koanf:"s3_endpoint"`
	S3PresignExpiry time.Duration `koanf:"s3_presign_expiry"`

	// Rate limiting of recipe creation
	RecipeCreationLimit  int           `koanf:"recipe_creation_limit"`
	RecipeCreationWindow time.Duration `koanf:"recipe_creation_window"`

	// Pagination
	PageSize    int `koanf:"page_size"`
	MaxPageSize int `koanf:"max_page_size"`

	// Observability
	LogLevel         string  `koanf:"log_level"`
	LogFormat        string  `koanf:"log_format"`
	TraceExporter    string  `koanf:"trace_exporter"`
	TraceSampleRatio float64 `koanf:"trace_sample_ratio"`
}

// Defaults returns the base layer every other source overrides.
func Defaults() Config {
	return Config{
		ServerHost:           "0.0.0.0",
		ServerPort:           "8080",
		ReadTimeout:          15 * time.Second,
		WriteTimeout:         30 * time.Second,
		ShutdownTimeout:      10 * time.Second,
		CORSOrigins:          []string{"http://localhost:3000"},
		DBDriver:             "postgres",
		DBHost:               "localhost",
		DBPort:               "5432",
		DBUser:               "foodgram",
		DBName:               "foodgram",
		DBSSLMode:            "disable",
		DBPath:               "foodgram.db",
		DBMaxOpenConns:       25,
		DBMaxIdleConns:       25,
		DBConnMaxLifetime:    5 * time.Minute,
		AutoMigrate:          true,
		MigrationsDir:        "migrations",
		RedisPort:            "6379",
		JWTSecret:            DefaultJWTSecret,
		TokenTTL:             24 * time.Hour,
		StorageBackend:       "local",
		MediaRoot:            "media",
		MediaURL:             "/media/",
		S3BucketName:         "foodgram-recipe-images",
		AWSRegion:            "us-east-1",
		RecipeCreationLimit:  30,
		RecipeCreationWindow: time.Hour,
		PageSize:             6,
		MaxPageSize:          100,
		LogLevel:             "info",
		LogFormat:            "json",
		TraceExporter:        "none",
		TraceSampleRatio:     1,
	}
}

// secretKeys are read from SECRETS_DIR when the file exists.
var secretKeys = []string{
	"db_user",
	"db_password",
	"jwt_secret",
	"redis_password",
	"redis_url",
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// (CONFIG_FILE), Docker secrets and finally environment variables.
func LoadConfig() (*Config, error) {
	environment := GetEnvironment()
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// CI passes everything through the environment.
	if environment != CI {
		if err := loadSecrets(k, secretsDir()); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitListFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := ValidateConfig(cfg, environment); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

func loadSecrets(k *koanf.Koanf, dir string) error {
	for _, name := range secretKeys {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read secret %s: %w", name, err)
		}
		if err := k.Set(name, strings.TrimSpace(string(data))); err != nil {
			return err
		}
	}
	return nil
}

// listFields arrive from the environment as comma-separated strings.
var listFields = []string{"cors_origins"}

func splitListFields(k *koanf.Koanf) error {
	for _, key := range listFields {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var items []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		if err := k.Set(key, items); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// RedisEnabled reports whether a Redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN renders the key/value DSN understood by pgx and lib/pq.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
