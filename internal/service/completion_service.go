package service

import (
	"time"

	"seccode_backend/internal/model"
	"seccode_backend/internal/repository"
)

// CompletionService 完成记录：同一 (user, content) 重复通过只覆盖时间戳
type CompletionService struct {
	Repo *repository.CompletionRepository
	now  func() time.Time
}

func NewCompletionService(repo *repository.CompletionRepository) *CompletionService {
	return &CompletionService{
		Repo: repo,
		now:  time.Now,
	}
}

// Record 幂等落库，多次调用不会产生重复行
// success 仅对实验和项目有意义，题目恒为通过才记录
func (s *CompletionService) Record(userID uint, contentSlug string, contentType model.ContentKind, success bool) error {
	record := &model.CompletionRecord{
		UserID:      userID,
		ContentSlug: contentSlug,
		ContentType: contentType,
		CompletedAt: s.now(),
	}
	if contentType == model.KindLab || contentType == model.KindProject {
		record.Success = &success
	}
	return s.Repo.Upsert(record)
}

// RecentActivity 最近完成列表
func (s *CompletionService) RecentActivity(userID uint, limit int) ([]model.CompletionRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Repo.FindByUser(userID, limit)
}

// CompletedCount 完成总数，重复通过同一内容只算一次
func (s *CompletionService) CompletedCount(userID uint) (int64, error) {
	return s.Repo.CountByUser(userID)
}
