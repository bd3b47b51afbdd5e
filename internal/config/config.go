package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string   `env:"HTTP_ADDR" envDefault:":8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	SecureCookies  bool     `env:"SECURE_COOKIES" envDefault:"false"`

	APIBaseURL          string        `env:"API_BASE_URL,required"`
	APITimeout          time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
	MessageFetchTimeout time.Duration `env:"MESSAGE_FETCH_TIMEOUT" envDefault:"5s"`
	FetchPageSize       int           `env:"FETCH_PAGE_SIZE" envDefault:"100"`
	ViewPageSize        int           `env:"VIEW_PAGE_SIZE" envDefault:"5"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"1m"`

	DatabaseURL string `env:"DATABASE_URL"`
	RabbitMQURL string `env:"RABBITMQ_URL"`

	MailHost     string `env:"MAIL_HOST"`
	MailPort     int    `env:"MAIL_PORT" envDefault:"587"`
	MailUser     string `env:"MAIL_USER"`
	MailPass     string `env:"MAIL_PASS"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@stonerealestate.com.au"`
	MailLoginURL string `env:"MAIL_LOGIN_URL"`

	CaptureRateLimit int `env:"CAPTURE_RATE_LIMIT" envDefault:"10"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		errs = append(errs, fmt.Errorf("API_BASE_URL must be an http(s) url, got %q", c.APIBaseURL))
	}
	if c.FetchPageSize <= 0 {
		errs = append(errs, errors.New("FETCH_PAGE_SIZE must be positive"))
	}
	if c.ViewPageSize <= 0 {
		errs = append(errs, errors.New("VIEW_PAGE_SIZE must be positive"))
	}
	if c.CaptureRateLimit <= 0 {
		errs = append(errs, errors.New("CAPTURE_RATE_LIMIT must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) MailEnabled() bool { return c.MailHost != "" }
