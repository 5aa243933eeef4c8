package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/healthlog/internal/config"
	"github.com/healthlog/internal/db"
	"github.com/healthlog/internal/service"
	"github.com/healthlog/internal/tracker"
)

// 测试数据生成器
func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	username := flag.String("user", "demo", "user to populate")
	password := flag.String("password", "demo123", "password when the user has to be created")
	days := flag.Int("days", 21, "number of days of history")
	flag.Parse()

	// 初始化数据库
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}

	fmt.Println("开始生成测试数据...")

	if err := db.EnsureUser(*username, *password); err != nil {
		log.Fatal("创建用户失败:", err)
	}
	var user db.User
	if err := db.DB.Where("username = ?", *username).First(&user).Error; err != nil {
		log.Fatal("读取用户失败:", err)
	}

	records, goals, err := seedHealthData(user.ID, time.Now().In(loc), *days, rand.New(rand.NewSource(42)))
	if err != nil {
		log.Fatal("生成数据失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("用户: %s\n", *username)
	fmt.Printf("记录: %d 条，目标: %d 个\n", records, goals)
}

// seedHealthData 为用户生成 days 天的记录与三个目标；已有记录时跳过
func seedHealthData(userID uint, now time.Time, days int, rng *rand.Rand) (int, int, error) {
	var existing int64
	if err := db.DB.Model(&db.ActivityRecord{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
		return 0, 0, err
	}
	if existing > 0 {
		fmt.Println("记录已存在，跳过创建")
		return 0, 0, nil
	}

	records := service.NewActivityService(db.DB)
	goals := service.NewGoalService(db.DB)
	workouts := []string{"Morning Run", "Cycling", "Swimming", "Yoga", "Strength Training"}

	created := 0
	today := tracker.StartOfDay(now)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)

		// 每天 3-5 次饮水
		for n := 0; n < 3+rng.Intn(3); n++ {
			at := date.Add(time.Duration(8+n*3) * time.Hour)
			if _, err := records.Create(userID, service.ActivityInput{
				Type:  string(tracker.Hydration),
				Value: float64(200 + rng.Intn(4)*50),
				Date:  at,
			}); err != nil {
				return created, 0, err
			}
			created++
		}

		// 约三分之二的日子有运动
		if rng.Intn(3) != 0 {
			start := date.Add(time.Duration(6+rng.Intn(12)) * time.Hour)
			end := start.Add(time.Duration(30+rng.Intn(60)) * time.Minute)
			if _, err := records.Create(userID, service.ActivityInput{
				Type:      string(tracker.Exercise),
				Title:     workouts[rng.Intn(len(workouts))],
				Value:     float64(150 + rng.Intn(350)),
				Date:      start,
				StartTime: &start,
				EndTime:   &end,
				Notes:     "Felt **good** today.",
			}); err != nil {
				return created, 0, err
			}
			created++
		}

		// 前一晚的睡眠，今天的记录不生成
		if i > 0 {
			sleepStart := date.Add(22*time.Hour + time.Duration(rng.Intn(120))*time.Minute)
			sleepEnd := sleepStart.Add(6*time.Hour + time.Duration(rng.Intn(150))*time.Minute)
			if _, err := records.Create(userID, service.ActivityInput{
				Type:      string(tracker.Sleep),
				StartTime: &sleepStart,
				EndTime:   &sleepEnd,
			}); err != nil {
				return created, 0, err
			}
			created++
		}
	}

	weekStart := tracker.TrailingWeekStart(now)
	goalInputs := []service.GoalInput{
		{Type: string(tracker.Hydration), Target: 14000, StartDate: weekStart, EndDate: today},
		{Type: string(tracker.Exercise), Target: 2500, StartDate: weekStart, EndDate: today.AddDate(0, 0, 7)},
		{Type: string(tracker.Sleep), Target: 56, StartDate: today.AddDate(0, 0, -days+1), EndDate: today},
	}
	for _, input := range goalInputs {
		if _, err := goals.Create(userID, input); err != nil {
			return created, 0, err
		}
	}

	return created, len(goalInputs), nil
}
