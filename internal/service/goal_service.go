package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/healthlog/internal/db"
	"github.com/healthlog/internal/tracker"
	"gorm.io/gorm"
)

var (
	// ErrGoalNotFound 在目标不存在或不属于当前用户时返回
	ErrGoalNotFound = errors.New("goal not found")
	// ErrInvalidGoal 表示目标配置不合法
	ErrInvalidGoal = errors.New("invalid goal")
)

// GoalService 负责目标的增删改查
type GoalService struct {
	db *gorm.DB
}

// GoalInput 定义创建/更新目标时的字段
// 只取日期部分：StartDate 归一到当天 00:00:00，EndDate 归一到当天 23:59:59
type GoalInput struct {
	Type      string
	Target    float64
	StartDate time.Time
	EndDate   time.Time
}

// NewGoalService 构造 GoalService
func NewGoalService(gdb *gorm.DB) *GoalService {
	return &GoalService{db: gdb}
}

// List 返回用户全部目标，按开始日期升序
func (s *GoalService) List(userID uint) ([]tracker.Goal, error) {
	var rows []db.Goal
	if err := s.db.Where("user_id = ?", userID).Order("start_date ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return toGoals(rows)
}

// ActiveOn 返回窗口包含指定时刻的目标
func (s *GoalService) ActiveOn(userID uint, at time.Time) ([]tracker.Goal, error) {
	goals, err := s.List(userID)
	if err != nil {
		return nil, err
	}
	return tracker.ActiveGoals(goals, at), nil
}

// Get 根据 ID 获取目标
func (s *GoalService) Get(userID uint, id string) (tracker.Goal, error) {
	row, err := s.find(userID, id)
	if err != nil {
		return tracker.Goal{}, err
	}
	return toGoal(*row)
}

// Create 新建目标
func (s *GoalService) Create(userID uint, input GoalInput) (tracker.Goal, error) {
	goal, err := buildGoal(userID, input)
	if err != nil {
		return tracker.Goal{}, err
	}

	row := fromGoal(goal)
	if err := s.db.Create(&row).Error; err != nil {
		return tracker.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return toGoal(row)
}

// Update 修改目标，校验规则与创建一致
func (s *GoalService) Update(userID uint, id string, input GoalInput) (tracker.Goal, error) {
	existing, err := s.find(userID, id)
	if err != nil {
		return tracker.Goal{}, err
	}

	goal, err := buildGoal(userID, input)
	if err != nil {
		return tracker.Goal{}, err
	}
	goal.ID = existing.ID

	row := fromGoal(goal)
	row.CreatedAt = existing.CreatedAt
	if err := s.db.Save(&row).Error; err != nil {
		return tracker.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return toGoal(row)
}

// Delete 删除目标
func (s *GoalService) Delete(userID uint, id string) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&db.Goal{})
	if result.Error != nil {
		return fmt.Errorf("delete goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (s *GoalService) find(userID uint, id string) (*db.Goal, error) {
	var row db.Goal
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return &row, nil
}

func buildGoal(userID uint, input GoalInput) (tracker.Goal, error) {
	kind, err := tracker.ParseActivityType(input.Type)
	if err != nil {
		return tracker.Goal{}, fmt.Errorf("%w: %v", ErrInvalidGoal, err)
	}
	if input.Target <= 0 {
		return tracker.Goal{}, fmt.Errorf("%w: target must be positive", ErrInvalidGoal)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return tracker.Goal{}, fmt.Errorf("%w: start and end date are required", ErrInvalidGoal)
	}
	start := tracker.StartOfDay(input.StartDate)
	end := tracker.EndOfDay(input.EndDate)
	if start.After(end) {
		return tracker.Goal{}, fmt.Errorf("%w: start date must not be after end date", ErrInvalidGoal)
	}

	return tracker.Goal{
		UserID: userID,
		Type:   kind,
		Target: input.Target,
		Start:  start,
		End:    end,
	}, nil
}

func fromGoal(g tracker.Goal) db.Goal {
	return db.Goal{
		ID:          g.ID,
		UserID:      g.UserID,
		Type:        string(g.Type),
		TargetValue: g.Target,
		StartDate:   g.Start.UTC(),
		EndDate:     g.End.UTC(),
	}
}

func toGoal(row db.Goal) (tracker.Goal, error) {
	kind, err := tracker.ParseActivityType(row.Type)
	if err != nil {
		return tracker.Goal{}, fmt.Errorf("decode goal %s: %w", row.ID, err)
	}
	return tracker.Goal{
		ID:     row.ID,
		UserID: row.UserID,
		Type:   kind,
		Target: row.TargetValue,
		Start:  row.StartDate,
		End:    row.EndDate,
	}, nil
}

func toGoals(rows []db.Goal) ([]tracker.Goal, error) {
	goals := make([]tracker.Goal, 0, len(rows))
	for _, row := range rows {
		goal, err := toGoal(row)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, nil
}
