// Package config loads runtime configuration from config.yaml, .env and the
// process environment, in that order of precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		Addr           string   `yaml:"-"`
	} `yaml:"server"`

	Database struct {
		Driver       string `yaml:"driver"` // postgres | sqlite
		DSN          string `yaml:"dsn"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	Auth struct {
		Secret   string        `yaml:"secret"`
		TokenTTL time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	Models struct {
		Dir string `yaml:"dir"`
	} `yaml:"models"`

	Log struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		FilePath string `yaml:"file_path"`
	} `yaml:"log"`

	LLM struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"llm"`

	Redis struct {
		URL     string `yaml:"url"`
		Channel string `yaml:"channel"`
	} `yaml:"redis"`

	Gmail struct {
		Enabled         bool   `yaml:"enabled"`
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		Query           string `yaml:"query"`
		Schedule        string `yaml:"schedule"`
		ModelName       string `yaml:"model_name"`
	} `yaml:"gmail"`
}

// Load reads path (a missing file is fine), applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	var cfg Config
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		log.Printf("Loading configuration from %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = p
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Auth.Secret, "JWT_SECRET")
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		cfg.Auth.TokenTTL = d
	}
	setString(&cfg.Models.Dir, "MODELS_DIR")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.LLM.APIKey, "GEMINI_API_KEY")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	setString(&cfg.Redis.URL, "REDIS_URL")
	if v := os.Getenv("GMAIL_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GMAIL_ENABLED: %w", err)
		}
		cfg.Gmail.Enabled = b
	}
	setString(&cfg.Gmail.CredentialsFile, "GMAIL_CREDENTIALS")
	setString(&cfg.Gmail.TokenFile, "GMAIL_TOKEN")
	setString(&cfg.Gmail.Query, "GMAIL_QUERY")
	setString(&cfg.Gmail.Schedule, "GMAIL_SCHEDULE")
	setString(&cfg.Gmail.ModelName, "GMAIL_MODEL")
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	cfg.Server.Addr = fmt.Sprintf(":%d", cfg.Server.Port)

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "postgres" {
		cfg.Database.DSN = "host=localhost user=postgres password=password dbname=leads port=5432 sslmode=disable"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "leads.db"
	}

	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Models.Dir == "" {
		cfg.Models.Dir = "models"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-2.5-flash"
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "leads.labeled"
	}
	if cfg.Gmail.CredentialsFile == "" {
		cfg.Gmail.CredentialsFile = "credential.json"
	}
	if cfg.Gmail.TokenFile == "" {
		cfg.Gmail.TokenFile = "token.json"
	}
	if cfg.Gmail.Query == "" {
		cfg.Gmail.Query = "from:upwork newer_than:7d"
	}
	if cfg.Gmail.Schedule == "" {
		cfg.Gmail.Schedule = "@every 15m"
	}
}

// Validate fails fast on settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.TokenTTL < 0 {
		return errors.New("token TTL must be positive")
	}
	if c.Gmail.Enabled && c.Gmail.ModelName == "" {
		return errors.New("GMAIL_MODEL is required when the Gmail watcher is enabled")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
