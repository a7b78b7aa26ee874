package repository

import (
	"fmt"
	"testing"

	"seccode_backend/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Challenge{},
		&model.TestCase{},
		&model.CompletionRecord{},
		&model.UsageCounter{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
