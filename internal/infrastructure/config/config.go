package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration, assembled from config.toml
// and ORDERPOST_-prefixed environment variables. Environment wins over
// the file; unset values fall back to built-in defaults.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Event    EventConfig
	HTTP     HTTPConfig
	Posting  PostingConfig
}

// AppConfig names the service and selects the environment profile.
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig is the Postgres connection and pool configuration.
// Lifetime values are minutes.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

// RedisConfig is the connection for the idempotency store.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig feeds the logger package.
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// EventConfig tunes the outbox processor.
type EventConfig struct {
	ProcessorEnabled bool
	BatchSize        int
	PollInterval     time.Duration
	MaxRetries       int
	CleanupEnabled   bool
	CleanupRetention time.Duration
}

// HTTPConfig tunes the HTTP server.
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// PostingConfig bounds the posting endpoints: how many orders one batch
// call may carry and how long request idempotency keys are remembered.
type PostingConfig struct {
	MaxBatchSize       int
	IdempotencyTTL     time.Duration
	IdempotencyEnabled bool
}

// Load reads config.toml (current directory, ./configs, or /app), then
// overlays ORDERPOST_ environment variables, then fills defaults. A
// missing file is fine; a malformed one is not.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("ORDERPOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Event: EventConfig{
			ProcessorEnabled: v.GetBool("event.processor_enabled"),
			BatchSize:        v.GetInt("event.batch_size"),
			PollInterval:     v.GetDuration("event.poll_interval"),
			MaxRetries:       v.GetInt("event.max_retries"),
			CleanupEnabled:   v.GetBool("event.cleanup_enabled"),
			CleanupRetention: v.GetDuration("event.cleanup_retention"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Posting: PostingConfig{
			MaxBatchSize:       v.GetInt("posting.max_batch_size"),
			IdempotencyTTL:     v.GetDuration("posting.idempotency_ttl"),
			IdempotencyEnabled: v.GetBool("posting.idempotency_enabled"),
		},
	}

	cfg.fillDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults replaces zero values with the built-in defaults. A zero
// value is indistinguishable from "unset" here, so an explicit 0 in the
// environment also gets the default.
func (c *Config) fillDefaults() {
	str(&c.App.Name, "orderpost-backend")
	str(&c.App.Env, "development")
	str(&c.App.Port, "8080")

	str(&c.Database.Host, "localhost")
	num(&c.Database.Port, 5432)
	str(&c.Database.User, "postgres")
	str(&c.Database.DBName, "orderpost")
	str(&c.Database.SSLMode, "disable")
	num(&c.Database.MaxOpenConns, 25)
	num(&c.Database.MaxIdleConns, 5)
	num(&c.Database.ConnMaxLifetime, 60)
	num(&c.Database.ConnMaxIdleTime, 30)

	str(&c.Redis.Host, "localhost")
	num(&c.Redis.Port, 6379)

	str(&c.Log.Level, "info")
	str(&c.Log.Format, "console")
	str(&c.Log.Output, "stdout")

	num(&c.Event.BatchSize, 100)
	dur(&c.Event.PollInterval, 5*time.Second)
	num(&c.Event.MaxRetries, 5)
	dur(&c.Event.CleanupRetention, 168*time.Hour)

	dur(&c.HTTP.ReadTimeout, 15*time.Second)
	dur(&c.HTTP.WriteTimeout, 15*time.Second)
	dur(&c.HTTP.IdleTimeout, 60*time.Second)
	num(&c.HTTP.MaxHeaderBytes, 1<<20)
	if c.HTTP.MaxBodySize == 0 {
		c.HTTP.MaxBodySize = 10 << 20
	}

	num(&c.Posting.MaxBatchSize, 100)
	dur(&c.Posting.IdempotencyTTL, 24*time.Hour)
}

func str(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

func num(field *int, def int) {
	if *field == 0 {
		*field = def
	}
}

func dur(field *time.Duration, def time.Duration) {
	if *field == 0 {
		*field = def
	}
}

// validate rejects configurations that would misbehave at runtime.
// Production additionally requires a database password and SSL, so a
// stray development profile cannot reach a production database.
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Posting.MaxBatchSize <= 0 {
		return fmt.Errorf("posting.max_batch_size must be positive")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}
	return nil
}

// DSN renders the Postgres connection URL. Credentials go through
// url.UserPassword so passwords with reserved characters survive.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
