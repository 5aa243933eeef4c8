package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthlog/internal/service"
	"github.com/healthlog/internal/tracker"
)

type goalRequest struct {
	Type      string  `json:"type"`
	Target    float64 `json:"target"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

// ListGoals 返回所选日期生效的目标及进度
// ?date= 默认今天；?mode=asof|window；?all=1 返回全部目标
func (a *API) ListGoals(c *gin.Context) {
	loc := a.requestLocation(c)
	day, ok := parseDateQuery(c, "date", loc, a.today(c))
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid date")
		return
	}
	mode, ok := progressMode(c)
	if !ok {
		return
	}

	userID := currentUserID(c)
	var (
		progress []tracker.Progress
		err      error
	)
	if queryFlag(c, "all") {
		progress, err = a.analysis.Goals(userID, day, mode)
	} else {
		progress, err = a.analysis.GoalsOn(userID, day, mode)
	}
	if err != nil {
		handleGoalError(c, err)
		return
	}

	f := a.formatter(c)
	items := make([]gin.H, 0, len(progress))
	for _, p := range progress {
		items = append(items, progressPayload(f, p, loc))
	}
	c.JSON(http.StatusOK, gin.H{
		"date":  formatDate(day, loc),
		"mode":  mode,
		"goals": items,
	})
}

// GetGoal 返回目标详情：进度与窗口内的相关记录
func (a *API) GetGoal(c *gin.Context) {
	loc := a.requestLocation(c)
	day, ok := parseDateQuery(c, "date", loc, a.today(c))
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid date")
		return
	}
	mode, ok := progressMode(c)
	if !ok {
		return
	}

	detail, err := a.analysis.GoalDetail(currentUserID(c), c.Param("id"), day, mode)
	if err != nil {
		handleGoalError(c, err)
		return
	}

	f := a.formatter(c)
	records := make([]gin.H, 0, len(detail.Records))
	for _, r := range detail.Records {
		records = append(records, recordPayload(f, r, loc))
	}

	payload := progressPayload(f, detail.Progress, loc)
	payload["records"] = records
	c.JSON(http.StatusOK, gin.H{"goal": payload, "mode": mode})
}

// CreateGoal 新建目标
func (a *API) CreateGoal(c *gin.Context) {
	input, ok := a.parseGoalInput(c)
	if !ok {
		return
	}

	goal, err := a.goals.Create(currentUserID(c), input)
	if err != nil {
		handleGoalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"goal": goalPayload(goal, a.requestLocation(c))})
}

// UpdateGoal 修改目标
func (a *API) UpdateGoal(c *gin.Context) {
	input, ok := a.parseGoalInput(c)
	if !ok {
		return
	}

	goal, err := a.goals.Update(currentUserID(c), c.Param("id"), input)
	if err != nil {
		handleGoalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goalPayload(goal, a.requestLocation(c))})
}

// DeleteGoal 删除目标
func (a *API) DeleteGoal(c *gin.Context) {
	if err := a.goals.Delete(currentUserID(c), c.Param("id")); err != nil {
		handleGoalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "goal deleted"})
}

func (a *API) parseGoalInput(c *gin.Context) (service.GoalInput, bool) {
	var payload goalRequest
	if !bindJSON(c, &payload, "invalid goal payload") {
		return service.GoalInput{}, false
	}

	loc := a.requestLocation(c)
	input := service.GoalInput{Type: payload.Type, Target: payload.Target}

	if strings.TrimSpace(payload.StartDate) != "" {
		start, err := parseTimeValue(payload.StartDate, loc)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid start date")
			return service.GoalInput{}, false
		}
		// 按请求时区取日历日
		input.StartDate = start.In(loc)
	}
	if strings.TrimSpace(payload.EndDate) != "" {
		end, err := parseTimeValue(payload.EndDate, loc)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid end date")
			return service.GoalInput{}, false
		}
		input.EndDate = end.In(loc)
	}
	return input, true
}

func progressMode(c *gin.Context) (service.ProgressMode, bool) {
	mode, err := service.ParseProgressMode(c.Query("mode"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "mode must be asof or window")
		return "", false
	}
	return mode, true
}

func queryFlag(c *gin.Context, key string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func goalPayload(g tracker.Goal, loc *time.Location) gin.H {
	return gin.H{
		"id":         g.ID,
		"type":       g.Type,
		"unit":       g.Type.Unit(),
		"target":     g.Target,
		"start_date": formatDate(g.Start, loc),
		"end_date":   formatDate(g.End, loc),
	}
}

func progressPayload(f tracker.Formatter, p tracker.Progress, loc *time.Location) gin.H {
	card := f.GoalCard(p)
	payload := goalPayload(p.Goal, loc)
	payload["completed"] = p.Completed
	payload["ratio"] = p.Ratio
	payload["remaining"] = p.Remaining()
	payload["achieved"] = p.Achieved()
	payload["card"] = gin.H{
		"target":    card.Target,
		"completed": card.Completed,
		"remaining": card.Remaining,
		"percent":   card.Percent,
		"achieved":  card.Achieved,
	}
	return payload
}

func handleGoalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		respondError(c, http.StatusNotFound, "goal not found")
	case errors.Is(err, service.ErrInvalidGoal):
		respondError(c, http.StatusBadRequest, strings.TrimPrefix(err.Error(), service.ErrInvalidGoal.Error()+": "))
	default:
		respondError(c, http.StatusInternalServerError, "operation failed")
	}
}
