package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API     APIConfig
	Crawl   CrawlConfig
	Dedup   DedupConfig
	Server  ServerConfig
	Logging LoggingConfig
}

type APIConfig struct {
	// URL and Key are optional. When either is empty, submission is skipped.
	URL     string
	Key     string
	Timeout time.Duration
}

type CrawlConfig struct {
	// DataSourceURL is the single-page mode target. Category mode takes its
	// listing URL as a CLI argument instead.
	DataSourceURL string
	Limit         int
	Delay         time.Duration
	HTTPTimeout   time.Duration
	ImageTimeout  time.Duration
	ImageDir      string
	UserAgent     string
	// DebugHTMLFile, when set, receives a copy of every fetched product page.
	DebugHTMLFile string
}

type DedupConfig struct {
	Backend     string // file, postgres or redis
	File        string
	DatabaseURL string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
}

type ServerConfig struct {
	Port int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// Optional .env next to the binary, same behavior as a missing file.
	_ = godotenv.Load()

	cfg := &Config{
		API: APIConfig{
			URL:     os.Getenv("API_URL"),
			Key:     os.Getenv("API_KEY"),
			Timeout: getEnvDuration("API_TIMEOUT", 30*time.Second),
		},
		Crawl: CrawlConfig{
			DataSourceURL: os.Getenv("DATA_SOURCE_URL"),
			Limit:         getEnvInt("CRAWL_LIMIT", 5),
			Delay:         getEnvDuration("CRAWL_DELAY", 3*time.Second),
			HTTPTimeout:   getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
			ImageTimeout:  getEnvDuration("IMAGE_TIMEOUT", 20*time.Second),
			ImageDir:      getEnv("IMAGE_DIR", "downloaded_images"),
			UserAgent:     getEnv("CRAWLER_USER_AGENT", defaultUserAgent),
			DebugHTMLFile: os.Getenv("DEBUG_HTML_FILE"),
		},
		Dedup: DedupConfig{
			Backend:     getEnv("DEDUP_BACKEND", "file"),
			File:        getEnv("DEDUP_FILE", "crawled_urls.txt"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPass:   os.Getenv("REDIS_PASSWORD"),
			RedisDB:     getEnvInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8085),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Crawl.Limit < 1 {
		return fmt.Errorf("CRAWL_LIMIT must be at least 1")
	}

	if c.Crawl.Delay < 0 {
		return fmt.Errorf("CRAWL_DELAY must not be negative")
	}

	switch c.Dedup.Backend {
	case "file", "postgres", "redis":
	default:
		return fmt.Errorf("unknown dedup backend: %s", c.Dedup.Backend)
	}

	if c.Dedup.Backend == "postgres" && c.Dedup.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres dedup backend")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	return nil
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// Bare integers are read as seconds, matching the old .env files.
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
