package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Counter    CounterConfig    `mapstructure:"counter"`
	Gatekeeper GatekeeperConfig `mapstructure:"gatekeeper"`
	Quota      QuotaConfig      `mapstructure:"quota"`
	Generator  GeneratorConfig  `mapstructure:"generator"`
	Provenance ProvenanceConfig `mapstructure:"provenance"`
	Entropy    EntropyConfig    `mapstructure:"entropy"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	CORS            CORSConfig    `mapstructure:"cors"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	if c.Path == "" {
		return "file::memory:?cache=shared"
	}
	return c.Path + "?_busy_timeout=5000"
}

// CounterConfig selects where the generation counter lives.
type CounterConfig struct {
	Backend     string `mapstructure:"backend"`
	FilePath    string `mapstructure:"file_path"`
	RecentLimit int    `mapstructure:"recent_limit"`
}

type GatekeeperConfig struct {
	MinLength     int     `mapstructure:"min_length"`
	MaxLength     int     `mapstructure:"max_length"`
	MaxCharRun    int     `mapstructure:"max_char_run"`
	MinAlphaRatio float64 `mapstructure:"min_alpha_ratio"`
	MinWords      int     `mapstructure:"min_words"`
}

type QuotaConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

type GeneratorConfig struct {
	Draws int `mapstructure:"draws"`
}

type ProvenanceConfig struct {
	Digest string `mapstructure:"digest"`
}

// EntropyConfig selects the salt source mixed into every seed.
type EntropyConfig struct {
	Source            string        `mapstructure:"source"`
	URL               string        `mapstructure:"url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// StorageConfig selects where generated artifacts are kept.
type StorageConfig struct {
	Type      string `mapstructure:"type"`
	LocalPath string `mapstructure:"local_path"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
	Prefix    string `mapstructure:"prefix"`

	// PresignExpiry bounds presigned download links for private buckets.
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

type SentryConfig struct {
	DSN              string  `mapstructure:"dsn"`
	Environment      string  `mapstructure:"environment"`
	Release          string  `mapstructure:"release"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

// Enabled reports whether error reporting is configured.
func (c *SentryConfig) Enabled() bool {
	return c.DSN != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "./logs/portrait.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/portrait.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("counter.backend", "memory")
	v.SetDefault("counter.file_path", "./data/counter.json")
	v.SetDefault("counter.recent_limit", 100)

	v.SetDefault("gatekeeper.min_length", 3)
	v.SetDefault("gatekeeper.max_length", 500)
	v.SetDefault("gatekeeper.max_char_run", 10)
	v.SetDefault("gatekeeper.min_alpha_ratio", 0.3)
	v.SetDefault("gatekeeper.min_words", 2)

	v.SetDefault("quota.limit", 10)
	v.SetDefault("quota.window", time.Hour)

	v.SetDefault("generator.draws", 30)
	v.SetDefault("provenance.digest", "rolling")

	v.SetDefault("entropy.source", "local")
	v.SetDefault("entropy.timeout", 2*time.Second)
	v.SetDefault("entropy.requests_per_minute", 60)

	v.SetDefault("storage.type", "none")
	v.SetDefault("storage.local_path", "./data/artifacts")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.prefix", "generations")
	v.SetDefault("storage.presign_expiry", 24*time.Hour)

	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.traces_sample_rate", 0.0)
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for deployment secrets
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")
	v.BindEnv("storage.public_url", "STORAGE_PUBLIC_URL")
	v.BindEnv("entropy.url", "ENTROPY_URL")
	v.BindEnv("sentry.dsn", "SENTRY_DSN")
	v.BindEnv("sentry.environment", "SENTRY_ENVIRONMENT")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Counter.Backend {
	case "memory", "file", "database":
	default:
		return fmt.Errorf("invalid counter.backend %q: want memory, file or database", c.Counter.Backend)
	}
	if c.Counter.Backend == "memory" && c.Storage.Type != "" && c.Storage.Type != "none" {
		return fmt.Errorf("storage.type %q needs a durable counter.backend (file or database): numbering restarts with memory", c.Storage.Type)
	}
	if c.Counter.RecentLimit <= 0 {
		return fmt.Errorf("counter.recent_limit must be positive")
	}
	if c.Gatekeeper.MinLength < 1 || (c.Gatekeeper.MaxLength > 0 && c.Gatekeeper.MaxLength < c.Gatekeeper.MinLength) {
		return fmt.Errorf("invalid gatekeeper length bounds %d..%d", c.Gatekeeper.MinLength, c.Gatekeeper.MaxLength)
	}
	if c.Quota.Limit > 0 && c.Quota.Window <= 0 {
		return fmt.Errorf("quota.window must be positive when quota.limit is set")
	}
	switch c.Entropy.Source {
	case "local":
	case "remote":
		if c.Entropy.URL == "" {
			return fmt.Errorf("entropy.url is required for the remote source")
		}
	default:
		return fmt.Errorf("invalid entropy.source %q", c.Entropy.Source)
	}
	return nil
}
