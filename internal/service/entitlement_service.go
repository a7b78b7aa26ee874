package service

import (
	"sync"

	"seccode_backend/internal/config"
	"seccode_backend/internal/model"
	"seccode_backend/pkg/monitoring"
)

// 免费用户每周默认配额
const (
	DefaultPuzzleLimit  = 7
	DefaultLabLimit     = 3
	DefaultProjectLimit = 2
)

// EntitlementService 按套餐和每周用量决定是否放行
// 专业版无条件放行且不产生计数写入
type EntitlementService struct {
	Usage *UsageService

	mu     sync.RWMutex
	limits map[model.ContentKind]int
}

func NewEntitlementService(usage *UsageService, cfg *config.Config) *EntitlementService {
	s := &EntitlementService{
		Usage:  usage,
		limits: defaultLimits(),
	}
	s.ApplyLimits(cfg)
	return s
}

func defaultLimits() map[model.ContentKind]int {
	return map[model.ContentKind]int{
		model.KindPuzzle:  DefaultPuzzleLimit,
		model.KindLab:     DefaultLabLimit,
		model.KindProject: DefaultProjectLimit,
	}
}

// ApplyLimits 配置热更新回调，0 表示沿用默认值
func (s *EntitlementService) ApplyLimits(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits = defaultLimits()
	if cfg.Limits.Puzzles > 0 {
		s.limits[model.KindPuzzle] = cfg.Limits.Puzzles
	}
	if cfg.Limits.Labs > 0 {
		s.limits[model.KindLab] = cfg.Limits.Labs
	}
	if cfg.Limits.Projects > 0 {
		s.limits[model.KindProject] = cfg.Limits.Projects
	}
}

// LimitFor 指定类型的当前限额
func (s *EntitlementService) LimitFor(kind model.ContentKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits[kind]
}

// Check 只读检查，无副作用
func (s *EntitlementService) Check(user *model.User, kind model.ContentKind) (*model.EntitlementDecision, error) {
	limit := s.LimitFor(kind)

	if user.IsPro() {
		return &model.EntitlementDecision{Allowed: true, Limit: limit}, nil
	}

	counter, err := s.Usage.GetCounter(user.ID)
	if err != nil {
		return nil, err
	}

	used := counter.CountFor(kind)
	if used >= limit {
		return &model.EntitlementDecision{
			Allowed:      false,
			LimitReached: true,
			LimitType:    kind,
			CurrentUsage: used,
			Limit:        limit,
		}, nil
	}

	return &model.EntitlementDecision{
		Allowed:      true,
		CurrentUsage: used,
		Limit:        limit,
	}, nil
}

// Consume 先检查后计数：达到上限的尝试被拒绝且零副作用
// 第 N 次放行是最后一次被计入，第 N+1 次直接拦下
func (s *EntitlementService) Consume(user *model.User, kind model.ContentKind) (*model.EntitlementDecision, error) {
	decision, err := s.Check(user, kind)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		monitoring.LimitBlockCounter.WithLabelValues(string(kind)).Inc()
		return decision, nil
	}

	// 专业版不计数，避免无意义的写入
	if user.IsPro() {
		return decision, nil
	}

	counter, err := s.Usage.Increment(user.ID, kind)
	if err != nil {
		return nil, err
	}
	decision.CurrentUsage = counter.CountFor(kind)
	return decision, nil
}
