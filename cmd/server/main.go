package main

import (
	"log"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"
	"github.com/healthlog/internal/config"
	"github.com/healthlog/internal/db"
	"github.com/healthlog/internal/handler"
	"github.com/healthlog/internal/router"
	"github.com/healthlog/internal/weather"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	if err := db.EnsureUser(cfg.SeedUserName, cfg.SeedPassword); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}

	location, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		log.Printf("[config] unknown timezone %q, using UTC: %v", cfg.DefaultTimezone, err)
		location = time.UTC
	}

	weatherService, closeCache := setupWeather(cfg.Weather)
	defer closeCache()

	api := handler.NewAPI(db.DB, handler.Options{
		DefaultCity: cfg.Weather.DefaultCity,
		UploadDir:   cfg.UploadDir,
		UploadURL:   cfg.UploadURLPath,
		Location:    location,
		Weather:     weatherService,
	})

	refresher := weather.NewRefresher(weatherService, api.Profiles())
	if err := refresher.Schedule(cfg.Weather.RefreshSchedule); err != nil {
		log.Fatalf("invalid weather refresh schedule %q: %v", cfg.Weather.RefreshSchedule, err)
	}
	refresher.Start()
	defer refresher.Stop()

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, router.Options{
		SessionSecret:  cfg.SessionSecret,
		UploadDir:      cfg.UploadDir,
		UploadURLPath:  cfg.UploadURLPath,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	log.Printf("[server] listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

// setupWeather 组装天气客户端与缓存；配置了 WEATHER_CACHE_PATH 时使用 bolt 持久化
func setupWeather(cfg config.WeatherConfig) (*weather.Service, func()) {
	client := weather.NewClient(cfg.APIKey)
	client.SetBaseURL(cfg.BaseURL)
	if cfg.APIKey == "" {
		log.Println("[weather] WEATHER_API_KEY is empty, weather requests will fail")
	}

	if cfg.CachePath == "" {
		return weather.NewService(client, weather.NewMemoryCache(), cfg.DefaultCity), func() {}
	}

	if dir := filepath.Dir(cfg.CachePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to create weather cache dir: %v", err)
		}
	}
	boltDB, err := bolt.Open(cfg.CachePath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		log.Fatalf("failed to open weather cache: %v", err)
	}
	return weather.NewService(client, weather.NewBoltCache(boltDB), cfg.DefaultCity), func() {
		if err := boltDB.Close(); err != nil {
			log.Printf("[weather] close cache failed: %v", err)
		}
	}
}
