package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"seccode_backend/internal/model"
	"seccode_backend/internal/repository"
	"seccode_backend/internal/util"
	"seccode_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	challengeListCacheKey = "challenges:list:%s:%d:%d"
	challengeCacheTTL     = 5 * time.Minute
	archiveURLExpiry      = 15 * time.Minute
)

// ChallengeService 题目目录：列表/详情走 Redis 缓存，启动走配额门禁
type ChallengeService struct {
	Repo        *repository.ChallengeRepository
	Entitlement *EntitlementService
	Storage     *StorageService
	Redis       *redis.Client
}

func NewChallengeService(repo *repository.ChallengeRepository, entitlement *EntitlementService, storage *StorageService, rdb *redis.Client) *ChallengeService {
	return &ChallengeService{
		Repo:        repo,
		Entitlement: entitlement,
		Storage:     storage,
		Redis:       rdb,
	}
}

type challengeListPage struct {
	List  []model.Challenge `json:"list"`
	Total int64             `json:"total"`
}

// List 学生侧列表，带 Redis 缓存
func (s *ChallengeService) List(ctx context.Context, kind model.ContentKind, page, limit int) ([]model.Challenge, int64, error) {
	key := fmt.Sprintf(challengeListCacheKey, kind, page, limit)

	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, key).Result()
		if err == nil {
			var pageData challengeListPage
			if json.Unmarshal([]byte(cached), &pageData) == nil {
				return pageData.List, pageData.Total, nil
			}
		}
	}

	challenges, total, err := s.Repo.List(kind, page, limit)
	if err != nil {
		return nil, 0, err
	}

	if s.Redis != nil {
		payload, err := json.Marshal(challengeListPage{List: challenges, Total: total})
		if err == nil {
			if err := s.Redis.Set(ctx, key, payload, challengeCacheTTL).Err(); err != nil {
				logger.Log.Warn("failed to cache challenge list", zap.Error(err))
			}
		}
	}

	return challenges, total, nil
}

// InvalidateCache 管理端写操作后清除列表缓存
func (s *ChallengeService) InvalidateCache(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	iter := s.Redis.Scan(ctx, 0, "challenges:list:*", 100).Iterator()
	for iter.Next(ctx) {
		s.Redis.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Log.Warn("failed to invalidate challenge cache", zap.Error(err))
	}
}

// GetForStudent 详情：隐藏用例不返回输入和期望输出
func (s *ChallengeService) GetForStudent(slug string) (*model.Challenge, error) {
	challenge, err := s.Repo.FindBySlug(slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}
	if !challenge.Enabled {
		return nil, util.ErrChallengeDisabled
	}

	visible := make([]model.TestCase, 0, len(challenge.TestCases))
	for _, tc := range challenge.TestCases {
		if tc.Hidden {
			visible = append(visible, model.TestCase{
				BaseModel: tc.BaseModel,
				Hidden:    true,
				Position:  tc.Position,
			})
			continue
		}
		visible = append(visible, tc)
	}
	challenge.TestCases = visible
	return challenge, nil
}

// GetForGrading 判题用，带完整用例，不做脱敏
func (s *ChallengeService) GetForGrading(slug string) (*model.Challenge, error) {
	challenge, err := s.Repo.FindBySlug(slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}
	if !challenge.Enabled {
		return nil, util.ErrChallengeDisabled
	}
	return challenge, nil
}

// StartResult 放行后的返回内容
type StartResult struct {
	Challenge *model.Challenge           `json:"challenge"`
	Decision  *model.EntitlementDecision `json:"usage"`
}

// Start 门禁在先：未放行的尝试不触达任何后续资源
func (s *ChallengeService) Start(user *model.User, slug string) (*StartResult, *model.EntitlementDecision, error) {
	challenge, err := s.GetForStudent(slug)
	if err != nil {
		return nil, nil, err
	}

	decision, err := s.Entitlement.Consume(user, challenge.Kind)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		return nil, decision, nil
	}

	return &StartResult{Challenge: challenge, Decision: decision}, nil, nil
}

// ArchiveURL 起始文件压缩包的限时下载链接
func (s *ChallengeService) ArchiveURL(ctx context.Context, slug string) (string, error) {
	challenge, err := s.GetForStudent(slug)
	if err != nil {
		return "", err
	}
	if challenge.ArchiveKey == "" {
		return "", util.ErrArchiveNotFound
	}
	return s.Storage.PresignedURL(ctx, challenge.ArchiveKey, archiveURLExpiry)
}

// --- 管理端 ---

func (s *ChallengeService) Create(ctx context.Context, challenge *model.Challenge) error {
	if err := s.Repo.Create(challenge); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	return nil
}

func (s *ChallengeService) Update(ctx context.Context, challenge *model.Challenge) error {
	if err := s.Repo.Update(challenge); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	return nil
}

// Delete 删除题目，连同已上传的起始文件压缩包
func (s *ChallengeService) Delete(ctx context.Context, id uint) error {
	challenge, err := s.Repo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrChallengeNotFound
		}
		return err
	}

	if challenge.ArchiveKey != "" && s.Storage.Available() {
		if err := s.Storage.DeleteObject(ctx, challenge.ArchiveKey); err != nil {
			logger.Log.Warn("failed to delete starter archive",
				zap.String("key", challenge.ArchiveKey), zap.Error(err))
		}
	}

	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	return nil
}

func (s *ChallengeService) SetEnabled(ctx context.Context, id uint, enabled bool) error {
	if err := s.Repo.SetEnabled(id, enabled); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	return nil
}

func (s *ChallengeService) ReplaceTestCases(ctx context.Context, challengeID uint, cases []model.TestCase) error {
	if err := s.Repo.ReplaceTestCases(challengeID, cases); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	return nil
}

// AttachArchive 管理端上传压缩包并挂到题目上
func (s *ChallengeService) AttachArchive(ctx context.Context, challengeID uint, reader io.Reader, size int64, contentType string) (string, error) {
	challenge, err := s.Repo.FindByID(challengeID)
	if err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("archives/%s/%s.zip", challenge.Slug, model.GenerateUUID())
	if err := s.Storage.UploadArchive(ctx, objectKey, reader, size, contentType); err != nil {
		return "", err
	}

	if err := s.Repo.UpdateArchiveKey(challengeID, objectKey); err != nil {
		return "", err
	}
	return objectKey, nil
}
