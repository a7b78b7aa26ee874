package controller

import (
	"seccode_backend/internal/model"
	"seccode_backend/internal/service"
	"seccode_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UsageController 每周用量与完成记录的查询 API
type UsageController struct {
	Usage       *service.UsageService
	Entitlement *service.EntitlementService
	Completion  *service.CompletionService
	AuthService *service.AuthService
}

func NewUsageController(usage *service.UsageService, entitlement *service.EntitlementService, completion *service.CompletionService, authService *service.AuthService) *UsageController {
	return &UsageController{
		Usage:       usage,
		Entitlement: entitlement,
		Completion:  completion,
		AuthService: authService,
	}
}

// @Summary 当前周用量与剩余配额
// @Tags 用量
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/usage [get]
func (c *UsageController) GetUsage(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	counter, err := c.Usage.GetCounter(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	kinds := []model.ContentKind{model.KindPuzzle, model.KindLab, model.KindProject}
	quota := make(map[string]gin.H, len(kinds))
	for _, kind := range kinds {
		limit := c.Entitlement.LimitFor(kind)
		used := counter.CountFor(kind)
		remaining := limit - used
		if remaining < 0 {
			remaining = 0
		}
		quota[string(kind)] = gin.H{
			"used":      used,
			"limit":     limit,
			"remaining": remaining,
		}
	}

	util.Success(ctx, gin.H{
		"weekStart": counter.WeekStart,
		"pro":       user.IsPro(),
		"quota":     quota,
	})
}

// @Summary 最近完成记录
// @Tags 用量
// @Produce json
// @Security BearerAuth
// @Param limit query int false "条数" default(20)
// @Success 200 {object} util.Response
// @Router /api/completions [get]
func (c *UsageController) GetCompletions(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	_, limit := parsePagination(ctx)
	records, err := c.Completion.RecentActivity(user.ID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	total, err := c.Completion.CompletedCount(user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"list": records, "total": total})
}
