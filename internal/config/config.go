// Package config содержит логику чтения конфигурации сервиса доставки воды.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mmeshcher/puntodeagua/internal/model"
)

const defaultRunAddress = "localhost:8080"

// Config содержит параметры конфигурации сервиса доставки воды.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	AuthTokenTTL time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`

	TelegramBotToken string        `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string        `env:"TELEGRAM_CHAT_ID"`
	TelegramAPIURL   string        `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	NotifyQueueSize  int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"64"`
	NotifyTimeout    time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`

	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	DBConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30s"`

	StatusTransitions string `env:"STATUS_TRANSITIONS" envDefault:"strict"`
	BusinessTimezone  string `env:"BUSINESS_TIMEZONE" envDefault:"America/Caracas"`

	// Заполняются в Parse из StatusTransitions и BusinessTimezone.
	TransitionMode model.TransitionMode
	Location       *time.Location
}

// TelegramEnabled сообщает, заданы ли параметры отправки уведомлений.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// Parse считывает конфигурацию из файла .env, флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envAuthSecret := cfg.AuthSecret

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret for signing auth tokens")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}

	mode, err := model.ParseTransitionMode(cfg.StatusTransitions)
	if err != nil {
		return nil, fmt.Errorf("parse STATUS_TRANSITIONS: %w", err)
	}
	cfg.TransitionMode = mode

	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("load BUSINESS_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.NotifyQueueSize <= 0 {
		return nil, fmt.Errorf("NOTIFY_QUEUE_SIZE must be positive, got %d", cfg.NotifyQueueSize)
	}
	if cfg.DBMaxConns <= 0 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", cfg.DBMaxConns)
	}

	return cfg, nil
}
