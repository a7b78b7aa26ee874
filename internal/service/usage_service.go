package service

import (
	"time"

	"seccode_backend/internal/model"
	"seccode_backend/internal/repository"
)

// UsageService 每周用量账本
// 周键是"当前时间"的纯函数，各进程独立计算也会得到相同结果
type UsageService struct {
	Repo *repository.UsageRepository
	now  func() time.Time
}

func NewUsageService(repo *repository.UsageRepository) *UsageService {
	return &UsageService{
		Repo: repo,
		now:  time.Now,
	}
}

// WeekStartOf 最近的周日（本地时间零点），以纯日期表示
// 周边界翻转靠新键生效，没有显式的重置操作
func WeekStartOf(t time.Time) string {
	daysBack := int(t.Weekday()) // Sunday == 0
	sunday := t.AddDate(0, 0, -daysBack)
	return time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 0, 0, 0, 0, t.Location()).Format("2006-01-02")
}

// CurrentWeekStart 当前周键
func (s *UsageService) CurrentWeekStart() string {
	return WeekStartOf(s.now())
}

// GetCounter 当前周计数器，不存在时懒创建全零行
func (s *UsageService) GetCounter(userID uint) (*model.UsageCounter, error) {
	return s.Repo.GetOrCreate(userID, s.CurrentWeekStart())
}

// Increment 当前周按类型加一
func (s *UsageService) Increment(userID uint, kind model.ContentKind) (*model.UsageCounter, error) {
	return s.Repo.Increment(userID, s.CurrentWeekStart(), kind)
}
