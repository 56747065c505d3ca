package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Дедупликация: спатио-темпоральное окно слияния
	MergeWindow  time.Duration `env:"MERGE_WINDOW" envDefault:"30m"`
	MergeRadiusM float64       `env:"MERGE_RADIUS_M" envDefault:"200"`

	// Маршрутизация: радиус опасности и "курс обмена" штрафа на метры объезда
	OSRMBaseURL    string  `env:"OSRM_BASE_URL" envDefault:"https://router.project-osrm.org"`
	DangerRadiusM  float64 `env:"DANGER_RADIUS_M" envDefault:"150"`
	PenaltyDetourM float64 `env:"PENALTY_DETOUR_M" envDefault:"1000"`

	// LLM-оценщик достоверности (опционально)
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	PromptVersion string `env:"CREDIBILITY_PROMPT_VERSION" envDefault:"v2"`

	// Приёмник телеметрии (best-effort)
	SinkURL        string        `env:"SINK_URL"`
	SinkSecret     string        `env:"SINK_SECRET"`
	SinkTimeout    time.Duration `env:"SINK_TIMEOUT" envDefault:"5s"`
	SinkMaxRetries int           `env:"SINK_MAX_RETRIES" envDefault:"3"`
	SinkBaseDelay  time.Duration `env:"SINK_BASE_DELAY" envDefault:"1s"`

	// Фоновая загрузка внешних лент (NOAA/USGS)
	IngestEnabled     bool          `env:"INGEST_ENABLED" envDefault:"false"`
	IngestInterval    time.Duration `env:"INGEST_INTERVAL" envDefault:"10m"`
	IngestNOAAArea    string        `env:"INGEST_NOAA_AREA" envDefault:"NY"`
	IngestUSGSMinMag  float64       `env:"INGEST_USGS_MIN_MAGNITUDE" envDefault:"2.5"`
	IngestHTTPTimeout time.Duration `env:"INGEST_HTTP_TIMEOUT" envDefault:"30s"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		MergeWindow:       getEnvAsDuration("MERGE_WINDOW", 30*time.Minute),
		MergeRadiusM:      getEnvAsFloat("MERGE_RADIUS_M", 200),
		OSRMBaseURL:       getEnv("OSRM_BASE_URL", "https://router.project-osrm.org"),
		DangerRadiusM:     getEnvAsFloat("DANGER_RADIUS_M", 150),
		PenaltyDetourM:    getEnvAsFloat("PENALTY_DETOUR_M", 1000),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		PromptVersion:     getEnv("CREDIBILITY_PROMPT_VERSION", "v2"),
		SinkURL:           os.Getenv("SINK_URL"),
		SinkSecret:        os.Getenv("SINK_SECRET"),
		SinkTimeout:       getEnvAsDuration("SINK_TIMEOUT", 5*time.Second),
		SinkMaxRetries:    getEnvAsInt("SINK_MAX_RETRIES", 3),
		SinkBaseDelay:     getEnvAsDuration("SINK_BASE_DELAY", time.Second),
		IngestEnabled:     getEnvAsBool("INGEST_ENABLED", false),
		IngestInterval:    getEnvAsDuration("INGEST_INTERVAL", 10*time.Minute),
		IngestNOAAArea:    getEnv("INGEST_NOAA_AREA", "NY"),
		IngestUSGSMinMag:  getEnvAsFloat("INGEST_USGS_MIN_MAGNITUDE", 2.5),
		IngestHTTPTimeout: getEnvAsDuration("INGEST_HTTP_TIMEOUT", 30*time.Second),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat возвращает значение переменной окружения как float64 или значение по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool возвращает значение переменной окружения как bool или значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
