package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP API + dashboard WebSocket
	HTTPHost string
	HTTPPort int

	// Storage
	DBPath string

	// League definitions (rosters, schedule lengths, playoff format)
	LeaguesPath string
	SeasonYear  int

	// Schedule scraper
	ScrapeEnabled  bool
	ScrapeBaseURL  string
	ScrapeInterval time.Duration
	ScrapeRPS      int

	// Alerts
	DiscordWebhookURL string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPHost: envStr("HTTP_HOST", "0.0.0.0"),
		HTTPPort: envInt("HTTP_PORT", 8080),

		DBPath: envStr("DB_PATH", "data/pennant.db"),

		LeaguesPath: envStr("LEAGUES_PATH", "config/leagues.yaml"),
		SeasonYear:  envInt("SEASON_YEAR", time.Now().Year()),

		ScrapeEnabled: envBool("SCRAPE_ENABLED", true),
		ScrapeBaseURL: envStr("SCRAPE_BASE_URL", "https://sports.daum.net"),
		// Scores only change a few times a night; no need to hammer the source.
		ScrapeInterval: time.Duration(envInt("SCRAPE_INTERVAL_SEC", 1800)) * time.Second,
		ScrapeRPS:      envInt("SCRAPE_RPS", 1),

		DiscordWebhookURL: envStr("DISCORD_WEBHOOK_URL", ""),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
