package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Username string  `yaml:"username"`
	Workers  int     `yaml:"workers"` // polling workers
	AdminIDs []int64 `yaml:"admin_ids"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LoyaltyConfig struct {
	// QRNamespace is the literal prefix of QR payloads ("coffeerina:123456").
	QRNamespace string `yaml:"qr_namespace"`
	// RewardSticker is an optional Telegram sticker file id sent to the guest
	// when their counter wraps. Empty disables the sticker.
	RewardSticker string `yaml:"reward_sticker"`
}

type BackupConfig struct {
	Dir  string `yaml:"dir"`
	Keep int    `yaml:"keep"`
	// At is the daily wall-clock run time, "HH:MM".
	At string `yaml:"at"`
}

type OpsConfig struct {
	Port int `yaml:"port"` // /healthz and /metrics
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Loyalty  LoyaltyConfig  `yaml:"loyalty"`
	Backup   BackupConfig   `yaml:"backup"`
	Ops      OpsConfig      `yaml:"ops"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Loyalty.QRNamespace == "" {
		cfg.Loyalty.QRNamespace = "coffeerina"
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = "backup"
	}
	if cfg.Backup.Keep <= 0 {
		cfg.Backup.Keep = 7
	}
	if cfg.Backup.At == "" {
		cfg.Backup.At = "04:00"
	}
	if cfg.Ops.Port == 0 {
		cfg.Ops.Port = 9090
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if len(cfg.Bot.AdminIDs) == 0 {
		return nil, errors.New("bot.admin_ids is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if _, err := time.Parse("15:04", cfg.Backup.At); err != nil {
		return nil, fmt.Errorf("backup.at: %w", err)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
