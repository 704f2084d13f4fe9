package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port                string   `env:"PORT" envDefault:"8080"`
	ReadTimeoutSeconds  int      `env:"READ_TIMEOUT_SECONDS" envDefault:"180"`
	WriteTimeoutSeconds int      `env:"WRITE_TIMEOUT_SECONDS" envDefault:"180"`
	IdleTimeoutSeconds  int      `env:"IDLE_TIMEOUT_SECONDS" envDefault:"180"`
	AcceptedOrigins     []string `env:"ACCEPTED_ORIGINS" envDefault:"*" envSeparator:","`

	DBType              string   `env:"DB_TYPE" envDefault:"postgres"`
	DatabaseURL         string   `env:"DATABASE_URL"`
	DatabaseReplicaURLs []string `env:"DATABASE_REPLICA_URLS" envSeparator:","`

	AuthSecret         string        `env:"AUTH_SECRET"`
	AuthSecretSSMParam string        `env:"AUTH_SECRET_SSM_PARAM"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"1h"`

	DefaultPageSize     int `env:"DEFAULT_PAGE_SIZE" envDefault:"5"`
	MaxPageSize         int `env:"MAX_PAGE_SIZE" envDefault:"100"`
	CommentTreeMaxDepth int `env:"COMMENT_TREE_MAX_DEPTH" envDefault:"10"`
	CommentTreeMaxNodes int `env:"COMMENT_TREE_MAX_NODES" envDefault:"500"`

	MediaRoot   string `env:"MEDIA_ROOT" envDefault:"mediafolder"`
	MediaURL    string `env:"MEDIA_URL" envDefault:"/media/"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	GithubClientID     string `env:"GITHUB_CLIENT_ID"`
	GithubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	GithubRedirectURL  string `env:"GITHUB_REDIRECT_URL"`

	ErrorWebhookURL string `env:"ERROR_WEBHOOK_URL"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty       bool   `env:"LOG_PRETTY" envDefault:"false"`

	GenerateModels       bool `env:"GENERATE_MODELS" envDefault:"false"`
	GenerateColumnReport bool `env:"GENERATE_COLUMN_REPORT" envDefault:"false"`
}

// New loads .env files when present and parses the environment.
func New(envFiles ...string) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load(envFiles...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.DBType = strings.ToLower(strings.TrimSpace(c.DBType))
	switch c.DBType {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", c.DefaultPageSize)
	}
	if c.MaxPageSize < c.DefaultPageSize {
		c.MaxPageSize = c.DefaultPageSize
	}
	if c.CommentTreeMaxDepth < 1 {
		c.CommentTreeMaxDepth = 1
	}
	if c.CommentTreeMaxNodes < 1 {
		c.CommentTreeMaxNodes = 1
	}
	c.AcceptedOrigins = trimAll(c.AcceptedOrigins)
	c.DatabaseReplicaURLs = trimAll(c.DatabaseReplicaURLs)
	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("0.0.0.0:%s", c.Port)
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

func (c *Config) GithubEnabled() bool {
	return c.GithubClientID != "" && c.GithubClientSecret != ""
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
