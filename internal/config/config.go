package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Classifier struct {
		URL string `yaml:"url"`
	} `yaml:"classifier"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTLHours int64  `yaml:"token_ttl_hours"`
		// DryRunUser evaluates triage without persisting anything.
		DryRunUser string `yaml:"dry_run_user"`
	} `yaml:"auth"`
	RateLimit struct {
		Enabled       bool           `yaml:"enabled"`
		RedisAddr     string         `yaml:"redis_addr"`
		RedisPassword string         `yaml:"redis_password"`
		RedisDB       int            `yaml:"redis_db"`
		// Scopes maps a throttle scope name to its allowed requests per minute.
		Scopes map[string]int `yaml:"scopes"`
	} `yaml:"rate_limit"`
	Notifier struct {
		Enabled          bool   `yaml:"enabled"`
		TelegramBotToken string `yaml:"telegram_bot_token"`
		TelegramChatID   int64  `yaml:"telegram_chat_id"`
	} `yaml:"notifier"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.Auth.TokenTTLHours <= 0 {
		config.Auth.TokenTTLHours = 24
	}

	return config, nil
}
