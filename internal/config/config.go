package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

var (
	ErrEmptyBotToken   = errors.New("telegram bot token is required")
	ErrEmptyChannelID  = errors.New("confession channel id is required")
	ErrEmptyDBPassword = errors.New("database password is required")
)

type Config struct {
	App      AppConfig      `yaml:"app" env:"APP"`
	Database DatabaseConfig `yaml:"database" env:"DB"`
	Bot      BotConfig      `yaml:"bot" env:"BOT"`
	Limits   LimitsConfig   `yaml:"limits" env:"LIMITS"`
	Window   WindowConfig   `yaml:"window" env:"WINDOW"`
	NATS     NATSConfig     `yaml:"nats" env:"NATS"`
	Health   HealthConfig   `yaml:"health" env:"HEALTH"`
}

type AppConfig struct {
	Name        string `yaml:"name" env:"NAME" env-default:"confess-bot"`
	Environment string `yaml:"environment" env:"ENVIRONMENT" env-default:"production"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

type DatabaseConfig struct {
	Host           string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PORT" env-default:"5432"`
	User           string `yaml:"user" env:"USER" env-default:"confessbot"`
	Password       string `yaml:"password" env:"PASSWORD"`
	Name           string `yaml:"name" env:"NAME" env-default:"confessbot"`
	MaxConnections int    `yaml:"max_connections" env:"MAX_CONNECTIONS" env-default:"25"`
	MinConnections int    `yaml:"min_connections" env:"MIN_CONNECTIONS" env-default:"5"`
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

type BotConfig struct {
	Token        string `yaml:"token" env:"TOKEN"`
	ChannelID    string `yaml:"channel_id" env:"CHANNEL_ID"`
	LogChannelID string `yaml:"log_channel_id" env:"LOG_CHANNEL_ID"`
	OwnerID      int64  `yaml:"owner_id" env:"OWNER_ID"`
	ParseMode    string `yaml:"parse_mode" env:"PARSE_MODE" env-default:"Markdown"`
}

type LimitsConfig struct {
	PostDelay      time.Duration `yaml:"post_delay" env:"POST_DELAY" env-default:"60s"`
	DeleteCooldown time.Duration `yaml:"delete_cooldown" env:"DELETE_COOLDOWN" env-default:"60s"`
	LinkCooldown   time.Duration `yaml:"link_cooldown" env:"LINK_COOLDOWN" env-default:"5m"`
}

type WindowConfig struct {
	StartHour int `yaml:"start_hour" env:"START_HOUR" env-default:"6"`
	EndHour   int `yaml:"end_hour" env:"END_HOUR" env-default:"2"`
}

type HealthConfig struct {
	Port     int    `yaml:"port" env:"PORT" env-default:"8080"`
	Endpoint string `yaml:"endpoint" env:"ENDPOINT" env-default:"/healthz"`
}

type NATSConfig struct {
	URL        string `yaml:"url" env:"URL" env-default:"nats://localhost:4222"`
	StreamName string `yaml:"stream_name" env:"STREAM_NAME" env-default:"CONFESS"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.prod.yaml"
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from %s: %w", configPath, err)
	}

	cleanenv.ReadEnv(&cfg)

	if cfg.Bot.Token == "" {
		return nil, ErrEmptyBotToken
	}

	if cfg.Bot.ChannelID == "" {
		return nil, ErrEmptyChannelID
	}

	if cfg.Database.Password == "" {
		return nil, ErrEmptyDBPassword
	}

	if cfg.Window.StartHour < 0 || cfg.Window.StartHour > 23 {
		return nil, fmt.Errorf("window start hour %d out of range", cfg.Window.StartHour)
	}

	if cfg.Window.EndHour < 0 || cfg.Window.EndHour > 23 {
		return nil, fmt.Errorf("window end hour %d out of range", cfg.Window.EndHour)
	}

	return &cfg, nil
}
