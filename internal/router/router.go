package router

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/healthlog/internal/handler"
	"github.com/healthlog/internal/middleware"
)

const sessionName = "healthlog_session"

// Options 路由层需要的配置
type Options struct {
	SessionSecret  string
	UploadDir      string
	UploadURLPath  string
	RateLimitRPS   float64
	RateLimitBurst int
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.AccessLogger(), gin.Recovery())

	secret := strings.TrimSpace(opts.SessionSecret)
	if secret == "" {
		secret = "healthlog-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(api.LocaleMiddleware())

	// 头像等上传文件
	if dir := strings.TrimSpace(opts.UploadDir); dir != "" {
		urlPath := strings.TrimRight(strings.TrimSpace(opts.UploadURLPath), "/")
		if urlPath == "" {
			urlPath = "/uploads"
		}
		r.Static(urlPath, dir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/healthz", api.HealthCheck)

	apiGroup := r.Group("/api")
	{
		limited := apiGroup.Group("")
		limited.Use(middleware.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))
		{
			limited.POST("/register", api.Register)
			limited.POST("/login", api.Login)
		}
		apiGroup.POST("/logout", api.Logout)

		auth := apiGroup.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/profile", api.GetProfile)
			auth.PUT("/profile", api.UpdateProfile)
			auth.POST("/profile/avatar", api.UploadAvatar)
			auth.PUT("/profile/password", api.ChangePassword)

			auth.GET("/records", api.ListRecords)
			auth.POST("/records", api.CreateRecord)
			auth.GET("/records/:id", api.GetRecord)
			auth.PUT("/records/:id", api.UpdateRecord)
			auth.DELETE("/records/:id", api.DeleteRecord)

			auth.GET("/goals", api.ListGoals)
			auth.POST("/goals", api.CreateGoal)
			auth.GET("/goals/:id", api.GetGoal)
			auth.PUT("/goals/:id", api.UpdateGoal)
			auth.DELETE("/goals/:id", api.DeleteGoal)

			auth.GET("/analysis/weekly", api.WeeklyAnalysis)
			auth.GET("/appearance", api.Appearance)

			auth.GET("/weather", api.GetWeather)
			auth.POST("/weather/refresh", api.RefreshWeather)
			auth.GET("/weather/stream", api.StreamWeather)
		}
	}

	return r
}
