package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	HTTPPort    int
	APIKey      string

	CollectIntervalMins int
	SocialPostLimit     int
	NewsMaxRecords      int
	BlockscoutBaseURL   string
	CryptoPanicToken    string

	ReportHourUTC     int
	TopN              int
	DiscordWebhookURL string

	TelegramBotToken string

	OpenAIAPIKey string
	OpenAIModel  string

	SSHPort        int
	SSHHostKeyPath string
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		APIKey:            strings.TrimSpace(os.Getenv("API_KEY")),
		CryptoPanicToken:  strings.TrimSpace(os.Getenv("CRYPTOPANIC_AUTH_TOKEN")),
		DiscordWebhookURL: strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK_URL")),
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.CryptoPanicToken == "" {
		log.Println("Warning: CRYPTOPANIC_AUTH_TOKEN not set, social metrics will be defaulted")
	}
	if cfg.DiscordWebhookURL == "" {
		log.Println("Warning: DISCORD_WEBHOOK_URL not set, daily reports will not be delivered")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, report commentary will be disabled")
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	cfg.CollectIntervalMins = 30
	if v := strings.TrimSpace(os.Getenv("COLLECT_INTERVAL_MINS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CollectIntervalMins = n
		}
	}

	cfg.SocialPostLimit = 50
	if v := strings.TrimSpace(os.Getenv("SOCIAL_POST_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SocialPostLimit = n
		}
	}

	cfg.NewsMaxRecords = 75
	if v := strings.TrimSpace(os.Getenv("NEWS_MAX_RECORDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NewsMaxRecords = n
		}
	}

	cfg.BlockscoutBaseURL = strings.TrimSpace(os.Getenv("BLOCKSCOUT_BASE_URL"))
	if cfg.BlockscoutBaseURL == "" {
		cfg.BlockscoutBaseURL = "https://eth.blockscout.com"
	}

	cfg.ReportHourUTC = 8
	if v := strings.TrimSpace(os.Getenv("REPORT_HOUR_UTC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 23 {
			cfg.ReportHourUTC = n
		}
	}

	cfg.TopN = 10
	if v := strings.TrimSpace(os.Getenv("TOP_N")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TopN = n
		}
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.SSHPort = 2222
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/coinpulse_host_key"
	}

	return cfg
}
