package model

// UsageCounter 每用户每周一行，(user_id, week_start) 唯一
// week_start 为最近的周日（本地时间零点），以纯日期字符串存储
// 历史周的行不删除，门禁只读当前周
type UsageCounter struct {
	BaseModel
	UserID           uint   `gorm:"not null;uniqueIndex:idx_user_week" json:"userId"`
	WeekStart        string `gorm:"size:10;not null;uniqueIndex:idx_user_week" json:"weekStart"`
	PuzzlesCompleted int    `gorm:"default:0" json:"puzzlesCompleted"`
	LabsCompleted    int    `gorm:"default:0" json:"labsCompleted"`
	ProjectsStarted  int    `gorm:"default:0" json:"projectsStarted"`
}

func (UsageCounter) TableName() string {
	return "usage_counters"
}

// CountFor 返回指定类型的已用量
func (c *UsageCounter) CountFor(kind ContentKind) int {
	switch kind {
	case KindPuzzle:
		return c.PuzzlesCompleted
	case KindLab:
		return c.LabsCompleted
	case KindProject:
		return c.ProjectsStarted
	}
	return 0
}
