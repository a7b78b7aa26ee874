package repository

import (
	"seccode_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChallengeRepository 题目目录的数据库操作
type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) Create(challenge *model.Challenge) error {
	return r.DB.Create(challenge).Error
}

// Update 只写基础字段，测试用例经 ReplaceTestCases 整组替换
func (r *ChallengeRepository) Update(challenge *model.Challenge) error {
	return r.DB.Omit(clause.Associations).Save(challenge).Error
}

func (r *ChallengeRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Challenge{}, id).Error
}

// FindBySlug 带测试用例，按 position 排序
func (r *ChallengeRepository) FindBySlug(slug string) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.Preload("TestCases", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("slug = ?", slug).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *ChallengeRepository) FindByID(id uint) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.Preload("TestCases", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&challenge, id).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// List 学生侧列表，只返回启用的条目，不带测试用例
func (r *ChallengeRepository) List(kind model.ContentKind, page, limit int) ([]model.Challenge, int64, error) {
	var challenges []model.Challenge
	var total int64

	query := r.DB.Model(&model.Challenge{}).Where("enabled = ?", true)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("`order` ASC, id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&challenges).Error
	return challenges, total, err
}

// ListAll 管理端列表，含禁用条目
func (r *ChallengeRepository) ListAll(page, limit int) ([]model.Challenge, int64, error) {
	var challenges []model.Challenge
	var total int64

	if err := r.DB.Model(&model.Challenge{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.Order("`order` ASC, id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&challenges).Error
	return challenges, total, err
}

// ReplaceTestCases 整组替换测试用例，position 按传入顺序写入
func (r *ChallengeRepository) ReplaceTestCases(challengeID uint, cases []model.TestCase) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("challenge_id = ?", challengeID).Delete(&model.TestCase{}).Error; err != nil {
			return err
		}
		for i := range cases {
			cases[i].ID = 0
			cases[i].ChallengeID = challengeID
			cases[i].Position = i
			if err := tx.Create(&cases[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ChallengeRepository) SetEnabled(id uint, enabled bool) error {
	return r.DB.Model(&model.Challenge{}).
		Where("id = ?", id).
		Update("enabled", enabled).
		Error
}

func (r *ChallengeRepository) UpdateArchiveKey(id uint, key string) error {
	return r.DB.Model(&model.Challenge{}).
		Where("id = ?", id).
		Update("archive_key", key).
		Error
}
