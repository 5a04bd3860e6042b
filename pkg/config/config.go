package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/vpetrenko/tg-flashdecks/pkg/logger"
)

type Config struct {
	Storage  StorageConfig  `json:"storage"`
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
}

type StorageConfig struct {
	Driver   string `json:"driver"` // "sqlite" (default) or "postgres"
	Path     string `json:"path"`   // sqlite database file
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Port     int    `json:"port"`
	SSLMode  string `json:"sslmode"`
}

type TelegramConfig struct {
	Token string `json:"token"`
}

type LoggingConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

var AppConfig Config

func LoadConfig(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		logger.Error("failed to open config file", "error", err)
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&AppConfig); err != nil {
		logger.Error("failed to decode config file", "error", err)
		return err
	}

	if err := validate(&AppConfig); err != nil {
		logger.Error("invalid config", "error", err)
		return err
	}
	return nil
}

func validate(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case "", "sqlite":
		cfg.Storage.Driver = "sqlite"
		if cfg.Storage.Path == "" {
			cfg.Storage.Path = "flashdecks.db"
		}
	case "postgres":
		cfg.Storage.Driver = "postgres"
		if cfg.Storage.Host == "" || cfg.Storage.DBName == "" {
			return fmt.Errorf("postgres storage requires host and dbname")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return nil
}
