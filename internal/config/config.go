package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr      string
	Port            string
	DatabaseDriver  string
	DatabasePath    string
	SessionSecret   string
	GinMode         string
	UploadDir       string
	UploadURLPath   string
	SeedUserName    string
	SeedPassword    string
	Weather         WeatherConfig
	RateLimitRPS    float64
	RateLimitBurst  int
	DefaultTimezone string
}

// WeatherConfig 天气服务相关配置
type WeatherConfig struct {
	APIKey          string
	BaseURL         string
	DefaultCity     string
	RefreshSchedule string
	CachePath       string
}

// LoadDotEnv 读取 .env 文件；文件不存在时静默跳过。
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[config] load .env failed: %v", err)
	}
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := envOr("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(envOr("DATABASE_DRIVER", "sqlite"))
	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		if driver == "postgres" {
			databasePath = postgresDSNFromParts()
		} else {
			databasePath = "healthlog.db"
		}
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabaseDriver: driver,
		DatabasePath:   databasePath,
		SessionSecret:  envOr("SESSION_SECRET", "healthlog-dev-secret"),
		GinMode:        envOr("GIN_MODE", "release"),
		UploadDir:      envOr("UPLOAD_DIR", "data/uploads"),
		UploadURLPath:  envOr("UPLOAD_URL_PATH", "/uploads"),
		SeedUserName:   strings.TrimSpace(os.Getenv("SEED_USER_NAME")),
		SeedPassword:   strings.TrimSpace(os.Getenv("SEED_USER_PASSWORD")),
		Weather: WeatherConfig{
			APIKey:          strings.TrimSpace(os.Getenv("WEATHER_API_KEY")),
			BaseURL:         strings.TrimSpace(os.Getenv("WEATHER_BASE_URL")),
			DefaultCity:     envOr("WEATHER_DEFAULT_CITY", "Taipei"),
			RefreshSchedule: envOr("WEATHER_REFRESH_SCHEDULE", "@every 30m"),
			CachePath:       strings.TrimSpace(os.Getenv("WEATHER_CACHE_PATH")),
		},
		RateLimitRPS:    envFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst:  envInt("RATE_LIMIT_BURST", 5),
		DefaultTimezone: envOr("DEFAULT_TIMEZONE", "Asia/Taipei"),
	}
}

// postgresDSNFromParts 兼容 DB_HOST/DB_USER 等拆分写法
func postgresDSNFromParts() string {
	host := strings.TrimSpace(os.Getenv("DB_HOST"))
	if host == "" {
		return ""
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host,
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		envOr("DB_PORT", "5432"),
		envOr("DB_SSLMODE", "disable"),
	)
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %v", key, raw, fallback)
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return value
}
