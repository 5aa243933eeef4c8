package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/healthlog/internal/config"
	"github.com/healthlog/internal/db"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	username := flag.String("user", firstNonEmpty(cfg.SeedUserName, "demo"), "username to create")
	password := flag.String("password", firstNonEmpty(cfg.SeedPassword, "demo123"), "password for the user")
	flag.Parse()

	// 初始化数据库
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	var count int64
	db.DB.Model(&db.User{}).Where("username = ?", *username).Count(&count)
	if count > 0 {
		fmt.Printf("用户 %s 已存在，无需初始化\n", *username)
		return
	}

	if err := db.EnsureUser(*username, *password); err != nil {
		log.Fatal("创建用户失败:", err)
	}

	fmt.Println("用户创建成功")
	fmt.Println("用户名:", *username)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
