package repository

import (
	"seccode_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionRepository 完成记录的数据库操作
type CompletionRepository struct {
	DB *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: db}
}

// Upsert 以 (user_id, content_slug) 为唯一键的原子写入
// 已存在时覆盖 completed_at 和 success，不产生第二行
func (r *CompletionRepository) Upsert(record *model.CompletionRecord) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "content_slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content_type", "completed_at", "success", "updated_at",
		}),
	}).Create(record).Error
}

func (r *CompletionRepository) FindByUserAndSlug(userID uint, slug string) (*model.CompletionRecord, error) {
	var record model.CompletionRecord
	err := r.DB.Where("user_id = ? AND content_slug = ?", userID, slug).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByUser 最近完成在前，供"最近动态"视图使用
func (r *CompletionRepository) FindByUser(userID uint, limit int) ([]model.CompletionRecord, error) {
	var records []model.CompletionRecord
	err := r.DB.Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// CountByUser 用户完成总数
func (r *CompletionRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CompletionRecord{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
