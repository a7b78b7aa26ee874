package database

import (
	"fmt"
	"log"

	"seccode_backend/internal/config"
	"seccode_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if migrate {
		err = db.AutoMigrate(
			&model.User{},
			&model.Challenge{},
			&model.TestCase{},
			&model.CompletionRecord{},
			&model.UsageCounter{},
		)

		if err != nil {
			return nil, err
		}

		log.Println("Database migration completed")

		// 默认示例题目（库为空时插入，便于本地联调）
		var count int64
		db.Model(&model.Challenge{}).Count(&count)
		if count == 0 {
			seedChallenges(db)
		}
	}

	return db, nil
}

func seedChallenges(db *gorm.DB) {
	samples := []model.Challenge{
		{
			Slug:        "safe-addition",
			Kind:        model.KindPuzzle,
			Title:       "检测整数加法溢出",
			Description: "读入两个 int，若相加会溢出则输出 OVERFLOW，否则输出和。",
			Difficulty:  "easy",
			Language:    "c",
			Enabled:     true,
			Order:       1,
			TestCases: []model.TestCase{
				{Input: "2147483647 1", ExpectedOutput: "OVERFLOW", Position: 0},
				{Input: "100 200", ExpectedOutput: "300", Position: 1},
				{Input: "-2147483648 -1", ExpectedOutput: "OVERFLOW", Hidden: true, Position: 2},
			},
		},
		{
			Slug:        "bounded-copy",
			Kind:        model.KindPuzzle,
			Title:       "安全的字符串拷贝",
			Description: "实现带边界检查的字符串拷贝，输出拷贝后的缓冲区内容。",
			Difficulty:  "medium",
			Language:    "c",
			Enabled:     true,
			Order:       2,
			TestCases: []model.TestCase{
				{Input: "hello", ExpectedOutput: "hello", Position: 0},
				{Input: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", ExpectedOutput: "TRUNCATED", Hidden: true, Position: 1},
			},
		},
	}
	for _, c := range samples {
		db.Create(&c)
	}
}
