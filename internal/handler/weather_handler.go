package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/healthlog/internal/weather"
)

const (
	weatherPingInterval = 25 * time.Second
	weatherWriteTimeout = 10 * time.Second
	weatherReadTimeout  = 60 * time.Second
	weatherFetchTimeout = 15 * time.Second
)

var weatherUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// GetWeather 返回 ?city= 或资料中城市的最近天气
func (a *API) GetWeather(c *gin.Context) {
	if a.weather == nil {
		respondError(c, http.StatusServiceUnavailable, "weather is not configured")
		return
	}

	city := a.weatherCity(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), weatherFetchTimeout)
	defer cancel()

	report, err := a.weather.Current(ctx, city)
	if err != nil {
		handleWeatherError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weather": weatherPayload(report)})
}

// RefreshWeather 立即重新获取天气；失败时保留旧结果
func (a *API) RefreshWeather(c *gin.Context) {
	if a.weather == nil {
		respondError(c, http.StatusServiceUnavailable, "weather is not configured")
		return
	}

	city := a.weatherCity(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), weatherFetchTimeout)
	defer cancel()

	report, err := a.weather.Refresh(ctx, city)
	if err != nil {
		if cached, ok := a.weather.Latest(city); ok {
			c.JSON(http.StatusOK, gin.H{"weather": weatherPayload(cached), "stale": true})
			return
		}
		handleWeatherError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weather": weatherPayload(report)})
}

// StreamWeather 升级为 websocket，先推送缓存结果，之后每次刷新成功都推送
func (a *API) StreamWeather(c *gin.Context) {
	if a.weather == nil {
		respondError(c, http.StatusServiceUnavailable, "weather is not configured")
		return
	}

	city := a.weatherCity(c)
	conn, err := weatherUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[weather] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := a.weather.Subscribe(city)
	defer cancel()

	// 读协程：客户端关闭或超时即结束
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(1024)
		_ = conn.SetReadDeadline(time.Now().Add(weatherReadTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(weatherReadTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if report, ok := a.weather.Latest(city); ok {
		if err := writeWeather(conn, report); err != nil {
			return
		}
	}

	ticker := time.NewTicker(weatherPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case report, ok := <-updates:
			if !ok {
				return
			}
			if err := writeWeather(conn, report); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(weatherWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeWeather(conn *websocket.Conn, report weather.Report) error {
	_ = conn.SetWriteDeadline(time.Now().Add(weatherWriteTimeout))
	return conn.WriteJSON(gin.H{"weather": weatherPayload(report)})
}

// weatherCity: ?city= 优先，其次用户资料中的城市，最后是服务默认城市
func (a *API) weatherCity(c *gin.Context) string {
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		return city
	}
	if profile, err := a.profiles.Get(currentUserID(c)); err == nil && strings.TrimSpace(profile.City) != "" {
		return profile.City
	}
	return a.weather.DefaultCity()
}

func weatherPayload(r weather.Report) gin.H {
	return gin.H{
		"city":           r.City,
		"temperature":    r.Temperature,
		"feels_like":     r.FeelsLike,
		"humidity":       r.Humidity,
		"wind_speed_ms":  r.WindSpeedMs,
		"pressure_hpa":   r.PressureHPa,
		"cloudiness_pct": r.CloudinessPct,
		"icon_code":      r.IconCode,
		"icon_url":       r.IconURL(),
		"description":    r.Description,
		"fetched_at":     r.FetchedAt.UTC().Format(time.RFC3339),
	}
}

func handleWeatherError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, weather.ErrCityRequired):
		respondError(c, http.StatusBadRequest, "city is required")
	case errors.Is(err, weather.ErrAPIKeyMissing):
		respondError(c, http.StatusServiceUnavailable, "weather is not configured")
	case errors.Is(err, weather.ErrUnavailable):
		respondError(c, http.StatusBadGateway, "weather unavailable")
	default:
		respondError(c, http.StatusBadGateway, "weather unavailable")
	}
}
