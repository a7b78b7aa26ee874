package model

// ContentKind 受配额约束的内容类型
type ContentKind string

const (
	KindPuzzle  ContentKind = "puzzle"
	KindLab     ContentKind = "lab"
	KindProject ContentKind = "project"
)

func (k ContentKind) Valid() bool {
	switch k {
	case KindPuzzle, KindLab, KindProject:
		return true
	}
	return false
}

// Challenge 题目/实验/项目的目录条目
// swagger:model Challenge
type Challenge struct {
	BaseModel
	Slug        string      `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Kind        ContentKind `gorm:"size:20;not null;index" json:"kind"`
	Title       string      `gorm:"size:255;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Difficulty  string      `gorm:"size:20;default:'medium'" json:"difficulty"`
	Language    string      `gorm:"size:10;default:'c'" json:"language"`
	StarterCode string      `gorm:"type:text" json:"starterCode"`
	ArchiveKey  string      `gorm:"size:255" json:"-"`
	Enabled     bool        `gorm:"default:true;index" json:"enabled"`
	Order       int         `gorm:"default:0" json:"order"`

	TestCases []TestCase `gorm:"foreignKey:ChallengeID;constraint:OnDelete:CASCADE" json:"testCases,omitempty"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// TestCase 目录侧只读数据，hidden 仅控制展示，不影响判题
type TestCase struct {
	BaseModel
	ChallengeID    uint   `gorm:"not null;index" json:"-"`
	Input          string `gorm:"type:text" json:"input"`
	ExpectedOutput string `gorm:"type:text" json:"expectedOutput"`
	Hidden         bool   `gorm:"default:false" json:"hidden"`
	Position       int    `gorm:"default:0" json:"position"`
}

func (TestCase) TableName() string {
	return "test_cases"
}
