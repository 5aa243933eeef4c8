package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/healthlog/internal/view"
)

// HealthCheck 提供部署平台与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

// Appearance 返回各页面的外观配置；?screen= 只返回单个页面
func (a *API) Appearance(c *gin.Context) {
	language := a.requestLocale(c).Language
	types := view.TypeStyles(language)

	if key := strings.TrimSpace(c.Query("screen")); key != "" {
		screen, ok := view.ScreenFor(key, language)
		if !ok {
			respondError(c, http.StatusNotFound, "unknown screen")
			return
		}
		c.JSON(http.StatusOK, gin.H{"screen": screen, "types": types})
		return
	}

	c.JSON(http.StatusOK, gin.H{"screens": view.Screens(language), "types": types})
}
