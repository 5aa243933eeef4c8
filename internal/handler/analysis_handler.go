package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthlog/internal/tracker"
)

// WeeklyAnalysis 返回 7 天的按日汇总、总计与日均
// ?start= 为窗口第一天，缺省为以今天结尾的 7 天；?type= 只返回该类型的序列
func (a *API) WeeklyAnalysis(c *gin.Context) {
	loc := a.requestLocation(c)
	start, ok := parseDateQuery(c, "start", loc, time.Time{})
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid start date")
		return
	}

	types := tracker.ActivityTypes
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		t, err := tracker.ParseActivityType(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "unknown activity type")
			return
		}
		types = []tracker.ActivityType{t}
	}

	summary, err := a.analysis.Weekly(currentUserID(c), start, loc)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load analysis")
		return
	}

	f := a.formatter(c)
	days := make([]gin.H, 0, len(summary.Buckets))
	labels := make([]string, 0, len(summary.Buckets))
	for _, b := range summary.Buckets {
		values := gin.H{}
		for _, t := range types {
			values[string(t)] = b.Get(t)
		}
		days = append(days, gin.H{"date": formatDate(b.Date, loc), "totals": values})
		labels = append(labels, formatDate(b.Date, loc))
	}

	series := make([]gin.H, 0, len(types))
	totals := gin.H{}
	averages := gin.H{}
	for _, t := range types {
		series = append(series, gin.H{
			"type":   t,
			"unit":   t.Unit(),
			"values": tracker.Series(summary.Buckets, t),
		})
		totals[string(t)] = summary.Total.Get(t)
		averages[string(t)] = summary.Averages.Get(t)
	}

	lines := make([]gin.H, 0, len(types))
	for _, line := range f.WeeklyLines(summary) {
		if !containsType(types, line.Type) {
			continue
		}
		lines = append(lines, gin.H{"type": line.Type, "total": line.Total, "average": line.Average})
	}

	c.JSON(http.StatusOK, gin.H{
		"start":    formatDate(summary.Start, loc),
		"end":      formatDate(summary.End, loc),
		"labels":   labels,
		"days":     days,
		"series":   series,
		"totals":   totals,
		"averages": averages,
		"lines":    lines,
	})
}

func containsType(types []tracker.ActivityType, t tracker.ActivityType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
