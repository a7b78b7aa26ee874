package repository

import (
	"seccode_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageRepository 每周用量计数器的数据库操作
type UsageRepository struct {
	DB *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{DB: db}
}

// GetOrCreate 懒创建：新的一周首次读取时插入全零行
// 并发下靠 (user_id, week_start) 唯一键兜底，冲突时忽略后读回
func (r *UsageRepository) GetOrCreate(userID uint, weekStart string) (*model.UsageCounter, error) {
	counter := model.UsageCounter{
		UserID:    userID,
		WeekStart: weekStart,
	}
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
		DoNothing: true,
	}).Create(&counter).Error
	if err != nil {
		return nil, err
	}

	var existing model.UsageCounter
	err = r.DB.Where("user_id = ? AND week_start = ?", userID, weekStart).First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// Increment 按类型加一
// 配额是软性防滥用限制，不要求计费级精度，并发下少量偏差可接受
func (r *UsageRepository) Increment(userID uint, weekStart string, kind model.ContentKind) (*model.UsageCounter, error) {
	column, err := columnFor(kind)
	if err != nil {
		return nil, err
	}

	if _, err := r.GetOrCreate(userID, weekStart); err != nil {
		return nil, err
	}

	err = r.DB.Model(&model.UsageCounter{}).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		Update(column, gorm.Expr(column+" + 1")).
		Error
	if err != nil {
		return nil, err
	}

	var counter model.UsageCounter
	err = r.DB.Where("user_id = ? AND week_start = ?", userID, weekStart).First(&counter).Error
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

func columnFor(kind model.ContentKind) (string, error) {
	switch kind {
	case model.KindPuzzle:
		return "puzzles_completed", nil
	case model.KindLab:
		return "labs_completed", nil
	case model.KindProject:
		return "projects_started", nil
	}
	return "", gorm.ErrInvalidField
}
