// Package config loads server settings from an optional YAML file, an
// optional .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Upload    UploadConfig    `mapstructure:"upload"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	URL    string `mapstructure:"url"`
}

// SupabaseConfig describes the hosted auth service. With JWTSecret set,
// access tokens are verified locally; otherwise each token is checked
// against the auth service's /user endpoint using URL and AnonKey.
type SupabaseConfig struct {
	URL       string `mapstructure:"url"`
	AnonKey   string `mapstructure:"anon_key"`
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type PipelineConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 keeps the transport default
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

type RateLimitConfig struct {
	UploadRPS   float64       `mapstructure:"upload_rps"`
	UploadBurst int           `mapstructure:"upload_burst"`
	TTL         time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configPath, or configs/config.yaml when it is empty. A missing
// config file is not an error.
func Load(configPath string) (*Config, error) {
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
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindings := map[string]string{
		"server.port":         "PORT",
		"database.driver":     "DATABASE_DRIVER",
		"database.path":       "DATABASE_PATH",
		"database.url":        "DATABASE_URL",
		"supabase.url":        "SUPABASE_URL",
		"supabase.anon_key":   "SUPABASE_ANON_KEY",
		"supabase.jwt_secret": "SUPABASE_JWT_SECRET",
		"pipeline.base_url":   "PIPELINE_BASE_URL",
		"log.level":           "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/humor-hub.db")
	v.SetDefault("pipeline.base_url", "https://api.almostcrackd.ai")
	v.SetDefault("pipeline.timeout", 0)
	v.SetDefault("upload.max_bytes", 10<<20)
	v.SetDefault("ratelimit.upload_rps", 0.5)
	v.SetDefault("ratelimit.upload_burst", 3)
	v.SetDefault("ratelimit.ttl", 10*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("config: database.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("config: database.url is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}

	if c.Supabase.JWTSecret == "" && (c.Supabase.URL == "" || c.Supabase.AnonKey == "") {
		return errors.New("config: set supabase.jwt_secret, or both supabase.url and supabase.anon_key")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server.port %d", c.Server.Port)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	return nil
}

// ProjectRef extracts "abcd" from "https://abcd.supabase.co". It returns ""
// when the URL is not on the hosted domain, and callers then pass the URL
// as a custom auth endpoint instead.
func (s SupabaseConfig) ProjectRef() string {
	host := strings.TrimPrefix(strings.TrimPrefix(s.URL, "https://"), "http://")
	host, _, _ = strings.Cut(host, "/")
	ref, rest, ok := strings.Cut(host, ".")
	if !ok || rest != "supabase.co" {
		return ""
	}
	return ref
}
