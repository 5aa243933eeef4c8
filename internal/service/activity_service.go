package service

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/healthlog/internal/db"
	"github.com/healthlog/internal/tracker"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

var (
	// ErrActivityNotFound 在记录不存在或不属于当前用户时返回
	ErrActivityNotFound = errors.New("activity record not found")
	// ErrInvalidActivity 表示记录输入不合法
	ErrInvalidActivity = errors.New("invalid activity record")
)

// farFuture 作为未指定结束时间时的上界
var farFuture = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// ActivityService 负责活动记录的增删改查
// 所有查询都限定在 userID 之内，记录从不跨用户共享
type ActivityService struct {
	db     *gorm.DB
	strict *bluemonday.Policy
}

// ActivityInput 定义创建/更新记录时的字段
// Hydration 忽略 Title 与起止时间；Sleep 的 Value 与 Date 由起止时间推导
type ActivityInput struct {
	Type      string
	Title     string
	Value     float64
	Date      time.Time
	StartTime *time.Time
	EndTime   *time.Time
	Notes     string
}

// ActivityFilter 描述列表查询条件
type ActivityFilter struct {
	Type   string
	Range  *tracker.Range
	Search string
}

// NewActivityService 构造 ActivityService
func NewActivityService(gdb *gorm.DB) *ActivityService {
	return &ActivityService{db: gdb, strict: bluemonday.StrictPolicy()}
}

// List 按类型、日期区间与标题关键字返回记录，按日期倒序
func (s *ActivityService) List(userID uint, filter ActivityFilter) ([]tracker.Record, error) {
	query := s.db.Model(&db.ActivityRecord{}).Where("user_id = ?", userID)

	if strings.TrimSpace(filter.Type) != "" {
		kind, err := tracker.ParseActivityType(filter.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidActivity, err)
		}
		query = query.Where("type = ?", string(kind))
	}

	rng := tracker.Range{End: farFuture}
	if filter.Range != nil {
		rng = tracker.Range{Start: filter.Range.Start.UTC(), End: filter.Range.End.UTC()}
		query = query.Where("date BETWEEN ? AND ?", rng.Start, rng.End)
	}

	var rows []db.ActivityRecord
	if err := query.Order("date DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list activity records: %w", err)
	}

	records, err := toRecords(rows)
	if err != nil {
		return nil, err
	}

	// 标题匹配在内存中进行，避免不同数据库 LIKE 大小写语义不一致
	return tracker.Filter(records, tracker.Query{UserID: userID, Range: rng, Title: filter.Search}), nil
}

// Between 返回区间内的全部记录，供统计使用
func (s *ActivityService) Between(userID uint, rng tracker.Range) ([]tracker.Record, error) {
	return s.List(userID, ActivityFilter{Range: &rng})
}

// Get 根据 ID 获取记录
func (s *ActivityService) Get(userID uint, id string) (tracker.Record, error) {
	row, err := s.find(userID, id)
	if err != nil {
		return tracker.Record{}, err
	}
	return toRecord(*row)
}

// Create 新建记录
func (s *ActivityService) Create(userID uint, input ActivityInput) (tracker.Record, error) {
	record, err := s.build(userID, input)
	if err != nil {
		return tracker.Record{}, err
	}

	row := fromRecord(record)
	if err := s.db.Create(&row).Error; err != nil {
		return tracker.Record{}, fmt.Errorf("create activity record: %w", err)
	}
	return toRecord(row)
}

// Update 修改记录；切换为 Hydration 时清空起止时间，未提供日期时保留原日期
func (s *ActivityService) Update(userID uint, id string, input ActivityInput) (tracker.Record, error) {
	existing, err := s.find(userID, id)
	if err != nil {
		return tracker.Record{}, err
	}

	if input.Date.IsZero() {
		input.Date = existing.Date
	}

	record, err := s.build(userID, input)
	if err != nil {
		return tracker.Record{}, err
	}
	record.ID = existing.ID

	row := fromRecord(record)
	row.CreatedAt = existing.CreatedAt
	if err := s.db.Save(&row).Error; err != nil {
		return tracker.Record{}, fmt.Errorf("update activity record: %w", err)
	}
	return toRecord(row)
}

// Delete 删除记录
func (s *ActivityService) Delete(userID uint, id string) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&db.ActivityRecord{})
	if result.Error != nil {
		return fmt.Errorf("delete activity record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrActivityNotFound
	}
	return nil
}

func (s *ActivityService) find(userID uint, id string) (*db.ActivityRecord, error) {
	var row db.ActivityRecord
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("get activity record: %w", err)
	}
	return &row, nil
}

// build 校验输入并按类型构造记录
func (s *ActivityService) build(userID uint, input ActivityInput) (tracker.Record, error) {
	kind, err := tracker.ParseActivityType(input.Type)
	if err != nil {
		return tracker.Record{}, fmt.Errorf("%w: %v", ErrInvalidActivity, err)
	}

	notes := s.plainText(input.Notes)
	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	switch kind {
	case tracker.Hydration:
		if input.Value <= 0 {
			return tracker.Record{}, fmt.Errorf("%w: value must be positive", ErrInvalidActivity)
		}
		return tracker.NewHydration(userID, input.Value, date, notes), nil

	case tracker.Sleep:
		if input.StartTime == nil || input.EndTime == nil {
			return tracker.Record{}, fmt.Errorf("%w: sleep requires start and end time", ErrInvalidActivity)
		}
		if !input.StartTime.Before(*input.EndTime) {
			return tracker.Record{}, fmt.Errorf("%w: start time must be before end time", ErrInvalidActivity)
		}
		return tracker.NewSleep(userID, tracker.Interval{Start: *input.StartTime, End: *input.EndTime}, notes), nil

	default:
		title := s.plainText(input.Title)
		if title == "" {
			return tracker.Record{}, fmt.Errorf("%w: title is required", ErrInvalidActivity)
		}
		if input.Value <= 0 {
			return tracker.Record{}, fmt.Errorf("%w: value must be positive", ErrInvalidActivity)
		}

		var iv tracker.Interval
		if input.StartTime != nil || input.EndTime != nil {
			if input.StartTime == nil || input.EndTime == nil {
				return tracker.Record{}, fmt.Errorf("%w: start and end time must be given together", ErrInvalidActivity)
			}
			if input.StartTime.After(*input.EndTime) {
				return tracker.Record{}, fmt.Errorf("%w: start time must not be after end time", ErrInvalidActivity)
			}
			iv = tracker.Interval{Start: *input.StartTime, End: *input.EndTime}
		}
		return tracker.NewExercise(userID, title, input.Value, date, iv, notes), nil
	}
}

// plainText 去除标记；StrictPolicy 会转义实体，这里还原为纯文本
func (s *ActivityService) plainText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(raw)))
}

func fromRecord(r tracker.Record) db.ActivityRecord {
	row := db.ActivityRecord{
		ID:     r.ID,
		UserID: r.UserID,
		Type:   string(r.Type),
		Title:  r.Title,
		Value:  r.Value,
		Date:   r.Date.UTC(),
		Notes:  r.Notes,
	}
	if iv, ok := r.Interval(); ok {
		start, end := iv.Start.UTC(), iv.End.UTC()
		row.StartTime = &start
		row.EndTime = &end
	}
	return row
}

func toRecord(row db.ActivityRecord) (tracker.Record, error) {
	kind, err := tracker.ParseActivityType(row.Type)
	if err != nil {
		return tracker.Record{}, fmt.Errorf("decode activity record %s: %w", row.ID, err)
	}

	record := tracker.Record{
		ID:     row.ID,
		UserID: row.UserID,
		Type:   kind,
		Title:  row.Title,
		Value:  row.Value,
		Date:   row.Date,
		Notes:  row.Notes,
		Timing: tracker.Untimed{},
	}
	if kind.Timed() && row.StartTime != nil && row.EndTime != nil {
		record.Timing = tracker.Interval{Start: *row.StartTime, End: *row.EndTime}
	}
	return record, nil
}

func toRecords(rows []db.ActivityRecord) ([]tracker.Record, error) {
	records := make([]tracker.Record, 0, len(rows))
	for _, row := range rows {
		record, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
