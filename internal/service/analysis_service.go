package service

import (
	"errors"
	"strings"
	"time"

	"github.com/healthlog/internal/tracker"
)

// ErrInvalidProgressMode 表示未知的进度计算方式
var ErrInvalidProgressMode = errors.New("invalid progress mode")

// ProgressMode 决定目标进度统计到哪一天
type ProgressMode string

const (
	// ProgressAsOf 只统计从目标开始到所选日期当天结束的记录
	ProgressAsOf ProgressMode = "asof"
	// ProgressWindow 统计整个目标窗口内的记录，与所选日期无关
	ProgressWindow ProgressMode = "window"
)

// ParseProgressMode 解析查询参数，空值默认为 ProgressAsOf
func ParseProgressMode(raw string) (ProgressMode, error) {
	switch ProgressMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ProgressAsOf:
		return ProgressAsOf, nil
	case ProgressWindow:
		return ProgressWindow, nil
	default:
		return "", ErrInvalidProgressMode
	}
}

// AnalysisService 在记录与目标之上计算周报与目标进度
type AnalysisService struct {
	records *ActivityService
	goals   *GoalService
	now     func() time.Time
}

// GoalDetail 目标进度及其相关记录
type GoalDetail struct {
	Progress tracker.Progress
	Records  []tracker.Record
}

// NewAnalysisService 创建 AnalysisService
func NewAnalysisService(records *ActivityService, goals *GoalService) *AnalysisService {
	return &AnalysisService{records: records, goals: goals, now: time.Now}
}

// WithClock 允许在测试中固定当前时间
func (s *AnalysisService) WithClock(now func() time.Time) *AnalysisService {
	if now == nil {
		return s
	}
	s.now = now
	return s
}

// Now 返回服务使用的当前时间
func (s *AnalysisService) Now() time.Time {
	return s.now()
}

// Weekly 汇总从 start 当天起连续 7 天的数据；start 为零值时取以今天结尾的 7 天。
// loc 决定自然日边界，nil 时使用本地时区。
func (s *AnalysisService) Weekly(userID uint, start time.Time, loc *time.Location) (tracker.WeeklySummary, error) {
	if loc == nil {
		loc = time.Local
	}
	if start.IsZero() {
		start = tracker.TrailingWeekStart(s.now().In(loc))
	}
	start = tracker.StartOfDay(start.In(loc))
	end := tracker.EndOfDay(start.AddDate(0, 0, tracker.WeekLength-1))

	records, err := s.records.Between(userID, tracker.Range{Start: start, End: end})
	if err != nil {
		return tracker.WeeklySummary{}, err
	}
	return tracker.Weekly(records, start), nil
}

// GoalsOn 返回在 day 生效的目标及其进度
func (s *AnalysisService) GoalsOn(userID uint, day time.Time, mode ProgressMode) ([]tracker.Progress, error) {
	goals, err := s.goals.ActiveOn(userID, day)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return []tracker.Progress{}, nil
	}

	records, err := s.records.Between(userID, spanOf(goals))
	if err != nil {
		return nil, err
	}

	progress := make([]tracker.Progress, 0, len(goals))
	for _, g := range goals {
		progress = append(progress, measure(g, records, day, mode))
	}
	return progress, nil
}

// Goals 返回用户全部目标的进度
func (s *AnalysisService) Goals(userID uint, day time.Time, mode ProgressMode) ([]tracker.Progress, error) {
	goals, err := s.goals.List(userID)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return []tracker.Progress{}, nil
	}

	records, err := s.records.Between(userID, spanOf(goals))
	if err != nil {
		return nil, err
	}

	progress := make([]tracker.Progress, 0, len(goals))
	for _, g := range goals {
		progress = append(progress, measure(g, records, day, mode))
	}
	return progress, nil
}

// GoalDetail 返回单个目标的进度与窗口内相关记录
func (s *AnalysisService) GoalDetail(userID uint, goalID string, day time.Time, mode ProgressMode) (GoalDetail, error) {
	goal, err := s.goals.Get(userID, goalID)
	if err != nil {
		return GoalDetail{}, err
	}

	records, err := s.records.List(userID, ActivityFilter{Type: string(goal.Type), Range: &tracker.Range{Start: goal.Start, End: goal.End}})
	if err != nil {
		return GoalDetail{}, err
	}

	return GoalDetail{
		Progress: measure(goal, records, day, mode),
		Records:  tracker.RelatedRecords(goal, records),
	}, nil
}

func measure(g tracker.Goal, records []tracker.Record, day time.Time, mode ProgressMode) tracker.Progress {
	if mode == ProgressWindow || day.IsZero() {
		return tracker.GoalProgress(g, records)
	}
	return tracker.GoalProgressAsOf(g, records, day)
}

// spanOf 返回覆盖所有目标窗口的最小区间
func spanOf(goals []tracker.Goal) tracker.Range {
	span := goals[0].Window()
	for _, g := range goals[1:] {
		if g.Start.Before(span.Start) {
			span.Start = g.Start
		}
		if g.End.After(span.End) {
			span.End = g.End
		}
	}
	return span
}
