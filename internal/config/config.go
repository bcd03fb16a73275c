package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration, loaded from a yaml file and
// overridable by environment variables.
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Auth struct {
		// Secret signs email-verification tokens
		Secret string `yaml:"secret"`
		// VerifyTTL bounds how long a verification link stays valid
		VerifyTTL time.Duration `yaml:"verify_ttl"`
	} `yaml:"auth"`

	Vote struct {
		// Policy is "toggle" (re-vote removes the mark) or "strict"
		// (re-vote is rejected as a validation error)
		Policy string `yaml:"policy"`
	} `yaml:"vote"`

	Mail struct {
		SMTPAddr string `yaml:"smtp_addr"`
		From     string `yaml:"from"`
		// BaseURL prefixes confirmation links in outgoing mail
		BaseURL string `yaml:"base_url"`
	} `yaml:"mail"`

	Social map[string]SocialProvider `yaml:"social"`

	CORS struct {
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"cors"`
}

// SocialProvider holds OAuth client settings for one provider
type SocialProvider struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

// Load reads configuration from path and applies env var overrides
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.Env = "local"
	cfg.Redis.PoolSize = 10
	cfg.Auth.VerifyTTL = 72 * time.Hour
	cfg.Vote.Policy = "toggle"

	data, err := os.ReadFile(path) //nolint:gosec // config path comes from APP_ENV, not user input
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("auth.secret is required (set AUTH_SECRET)")
	}
	if cfg.Vote.Policy != "toggle" && cfg.Vote.Policy != "strict" {
		return nil, fmt.Errorf("vote.policy must be toggle or strict, got %q", cfg.Vote.Policy)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Database.Host, "DB_HOST")
	overrideInt(&cfg.Database.Port, "DB_PORT")
	overrideString(&cfg.Database.User, "DB_USER")
	overrideString(&cfg.Database.Password, "DB_PASSWORD")
	overrideString(&cfg.Database.Name, "DB_NAME")

	overrideString(&cfg.Redis.Host, "REDIS_HOST")
	overrideInt(&cfg.Redis.Port, "REDIS_PORT")
	overrideString(&cfg.Redis.Password, "REDIS_PASSWORD")

	overrideString(&cfg.Auth.Secret, "AUTH_SECRET")
	overrideString(&cfg.Vote.Policy, "VOTE_POLICY")
	overrideInt(&cfg.Server.Port, "PORT")
	overrideString(&cfg.Server.Env, "APP_ENV")
	overrideString(&cfg.Mail.SMTPAddr, "SMTP_ADDR")
	overrideString(&cfg.Mail.From, "MAIL_FROM")
	overrideString(&cfg.Mail.BaseURL, "MAIL_BASE_URL")
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// DSN builds the MySQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}
