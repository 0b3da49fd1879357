package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log     Log     `yaml:"log"`
	Server  Server  `yaml:"server"`
	OpenAI  OpenAI  `yaml:"openai"`
	Catalog Catalog `yaml:"catalog"`
	Trip    Trip    `yaml:"trip"`
}

type OpenAI struct {
	Reducer  ModelConfig `yaml:"reducer" validate:"required"`
	Selector ModelConfig `yaml:"selector" validate:"required"`
}

type ModelConfig struct {
	// OpenAI base url
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1" validate:"required"`
	// OpenAI token
	Token string `yaml:"token" validate:"required"`
	// OpenAI model
	Model string `yaml:"model" example:"deepseek/deepseek-chat-v3-0324:free" validate:"required"`
}

type Catalog struct {
	// Base url of the catalog search service
	BaseURL string `yaml:"base_url" example:"https://catalog.internal:9000" validate:"required"`
	// API key for the catalog search service
	APIKey string `yaml:"api_key"`
	// How long cached search results stay fresh
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// Interval between background cache refreshes
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type Trip struct {
	// The single city the catalog currently covers
	SupportedCity string `yaml:"supported_city" example:"Austin"`
	// Weekday that triggers the guided fixed-choice day flow
	GuidedWeekday string `yaml:"guided_weekday" example:"Sunday"`
}

type Server struct {
	// HTTP listen address
	Listen string `yaml:"listen" example:":8080"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	result.ApplyDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func (c *Config) ApplyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Trip.SupportedCity == "" {
		c.Trip.SupportedCity = "Austin"
	}
	if c.Trip.GuidedWeekday == "" {
		c.Trip.GuidedWeekday = "Sunday"
	}
	if c.Catalog.CacheTTL == 0 {
		c.Catalog.CacheTTL = 10 * time.Minute
	}
	if c.Catalog.RefreshInterval == 0 {
		c.Catalog.RefreshInterval = 30 * time.Minute
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseGuidedWeekday resolves the configured weekday name, defaulting to Sunday.
func (t Trip) ParseGuidedWeekday() time.Weekday {
	if wd, ok := weekdays[strings.ToLower(t.GuidedWeekday)]; ok {
		return wd
	}
	return time.Sunday
}
