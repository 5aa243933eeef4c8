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

type recordRequest struct {
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Value     float64 `json:"value"`
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Notes     string  `json:"notes"`
}

// ListRecords 按类型、日期区间与标题搜索返回当前用户的记录
// ?date= 选择单日；?start=&end= 选择区间，end 早于 start 时重置为 start 当天结束
func (a *API) ListRecords(c *gin.Context) {
	loc := a.requestLocation(c)
	filter := service.ActivityFilter{
		Type:   c.Query("type"),
		Search: c.Query("search"),
	}

	rng, ok := recordRange(c, loc)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid date range")
		return
	}
	filter.Range = rng

	records, err := a.records.List(currentUserID(c), filter)
	if err != nil {
		handleRecordError(c, err)
		return
	}

	f := a.formatter(c)
	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		items = append(items, recordPayload(f, record, loc))
	}

	response := gin.H{"records": items, "groups": groupedRecords(records)}
	if filter.Range != nil {
		response["range"] = gin.H{
			"start": formatTime(filter.Range.Start, loc),
			"end":   formatTime(filter.Range.End, loc),
		}
	}
	c.JSON(http.StatusOK, response)
}

func recordRange(c *gin.Context, loc *time.Location) (*tracker.Range, bool) {
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		day, err := parseTimeValue(raw, loc)
		if err != nil {
			return nil, false
		}
		rng := tracker.DayRange(day)
		return &rng, true
	}

	rawStart := strings.TrimSpace(c.Query("start"))
	rawEnd := strings.TrimSpace(c.Query("end"))
	if rawStart == "" && rawEnd == "" {
		return nil, true
	}
	if rawStart == "" {
		return nil, false
	}

	start, err := parseTimeValue(rawStart, loc)
	if err != nil {
		return nil, false
	}
	end := start
	if rawEnd != "" {
		if end, err = parseTimeValue(rawEnd, loc); err != nil {
			return nil, false
		}
	}
	rng := tracker.NormalizeRange(start, end)
	return &rng, true
}

// groupedRecords 返回按类型分组后的 ID 列表，保持类型的展示顺序
func groupedRecords(records []tracker.Record) []gin.H {
	groups := tracker.GroupByType(records)
	totals := tracker.SumByType(records)
	out := make([]gin.H, 0, len(groups))
	for _, g := range groups {
		ids := make([]string, 0, len(g.Records))
		for _, r := range g.Records {
			ids = append(ids, r.ID)
		}
		out = append(out, gin.H{"type": g.Type, "ids": ids, "total": totals.Get(g.Type)})
	}
	return out
}

// GetRecord 返回记录详情，包含渲染后的备注
func (a *API) GetRecord(c *gin.Context) {
	record, err := a.records.Get(currentUserID(c), c.Param("id"))
	if err != nil {
		handleRecordError(c, err)
		return
	}

	payload := recordPayload(a.formatter(c), record, a.requestLocation(c))
	payload["notes_html"] = a.notes.Render(record.Notes)
	c.JSON(http.StatusOK, gin.H{"record": payload})
}

// CreateRecord 新建记录
func (a *API) CreateRecord(c *gin.Context) {
	input, ok := a.parseRecordInput(c)
	if !ok {
		return
	}

	record, err := a.records.Create(currentUserID(c), input)
	if err != nil {
		handleRecordError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record": recordPayload(a.formatter(c), record, a.requestLocation(c))})
}

// UpdateRecord 修改记录
func (a *API) UpdateRecord(c *gin.Context) {
	input, ok := a.parseRecordInput(c)
	if !ok {
		return
	}

	record, err := a.records.Update(currentUserID(c), c.Param("id"), input)
	if err != nil {
		handleRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": recordPayload(a.formatter(c), record, a.requestLocation(c))})
}

// DeleteRecord 删除记录
func (a *API) DeleteRecord(c *gin.Context) {
	if err := a.records.Delete(currentUserID(c), c.Param("id")); err != nil {
		handleRecordError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "record deleted"})
}

func (a *API) parseRecordInput(c *gin.Context) (service.ActivityInput, bool) {
	var payload recordRequest
	if !bindJSON(c, &payload, "invalid record payload") {
		return service.ActivityInput{}, false
	}

	loc := a.requestLocation(c)
	input := service.ActivityInput{
		Type:  payload.Type,
		Title: payload.Title,
		Value: payload.Value,
		Notes: payload.Notes,
	}

	if strings.TrimSpace(payload.Date) != "" {
		date, err := parseTimeValue(payload.Date, loc)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid date")
			return service.ActivityInput{}, false
		}
		input.Date = date
	}

	var err error
	if input.StartTime, err = parseOptionalTime(payload.StartTime, loc); err != nil {
		respondError(c, http.StatusBadRequest, "invalid start time")
		return service.ActivityInput{}, false
	}
	if input.EndTime, err = parseOptionalTime(payload.EndTime, loc); err != nil {
		respondError(c, http.StatusBadRequest, "invalid end time")
		return service.ActivityInput{}, false
	}

	return input, true
}

func recordPayload(f tracker.Formatter, record tracker.Record, loc *time.Location) gin.H {
	payload := gin.H{
		"id":         record.ID,
		"type":       record.Type,
		"title":      record.Title,
		"value":      record.Value,
		"unit":       record.Type.Unit(),
		"date":       formatTime(record.Date, loc),
		"notes":      record.Notes,
		"detail":     f.Detail(record),
		"amount":     f.Amount(record),
		"value_text": f.ValueWithUnit(record),
	}
	if iv, ok := record.Interval(); ok {
		payload["start_time"] = formatTime(iv.Start, loc)
		payload["end_time"] = formatTime(iv.End, loc)
	}
	if span, ok := f.TimeRange(record); ok {
		payload["time_range"] = span
	}
	return payload
}

func handleRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		respondError(c, http.StatusNotFound, "record not found")
	case errors.Is(err, service.ErrInvalidActivity):
		respondError(c, http.StatusBadRequest, strings.TrimPrefix(err.Error(), service.ErrInvalidActivity.Error()+": "))
	default:
		respondError(c, http.StatusInternalServerError, "operation failed")
	}
}
