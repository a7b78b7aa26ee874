package controller

import (
	"seccode_backend/internal/model"
	"seccode_backend/internal/service"
	"seccode_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ChallengeController 题目目录与启动流程的 API
type ChallengeController struct {
	Service     *service.ChallengeService
	AuthService *service.AuthService
}

func NewChallengeController(challengeService *service.ChallengeService, authService *service.AuthService) *ChallengeController {
	return &ChallengeController{
		Service:     challengeService,
		AuthService: authService,
	}
}

// @Summary 题目列表
// @Tags 题目
// @Produce json
// @Security BearerAuth
// @Param kind query string false "puzzle|lab|project"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/challenges [get]
func (c *ChallengeController) List(ctx *gin.Context) {
	kind := model.ContentKind(ctx.Query("kind"))
	if kind != "" && !kind.Valid() {
		util.BadRequest(ctx, "invalid kind")
		return
	}
	page, limit := parsePagination(ctx)

	challenges, total, err := c.Service.List(ctx.Request.Context(), kind, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  challenges,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 题目详情（隐藏用例已脱敏）
// @Tags 题目
// @Produce json
// @Security BearerAuth
// @Param slug path string true "题目标识"
// @Success 200 {object} util.Response{data=model.Challenge}
// @Router /api/challenges/{slug} [get]
func (c *ChallengeController) Get(ctx *gin.Context) {
	challenge, err := c.Service.GetForStudent(ctx.Param("slug"))
	if err != nil {
		if err == util.ErrChallengeNotFound || err == util.ErrChallengeDisabled {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, challenge)
}

// @Summary 启动题目（先过每周配额门禁，放行后才计数）
// @Tags 题目
// @Produce json
// @Security BearerAuth
// @Param slug path string true "题目标识"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "配额已用尽"
// @Router /api/challenges/{slug}/start [post]
func (c *ChallengeController) Start(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, blocked, err := c.Service.Start(user, ctx.Param("slug"))
	if err != nil {
		if err == util.ErrChallengeNotFound || err == util.ErrChallengeDisabled {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	if blocked != nil {
		util.LimitReached(ctx, blocked)
		return
	}

	util.Success(ctx, result)
}

// @Summary 起始文件压缩包下载链接
// @Tags 题目
// @Produce json
// @Security BearerAuth
// @Param slug path string true "题目标识"
// @Success 200 {object} util.Response
// @Router /api/challenges/{slug}/archive [get]
func (c *ChallengeController) DownloadArchive(ctx *gin.Context) {
	url, err := c.Service.ArchiveURL(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		if err == util.ErrChallengeNotFound || err == util.ErrChallengeDisabled || err == util.ErrArchiveNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

// --- 管理端 ---

type challengeBody struct {
	Slug        string            `json:"slug" binding:"required,max=100"`
	Kind        model.ContentKind `json:"kind" binding:"required"`
	Title       string            `json:"title" binding:"required,max=255"`
	Description string            `json:"description"`
	Difficulty  string            `json:"difficulty"`
	Language    string            `json:"language"`
	StarterCode string            `json:"starterCode"`
	Enabled     bool              `json:"enabled"`
	Order       int               `json:"order"`
}

// @Summary 创建题目
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body challengeBody true "题目信息"
// @Success 201 {object} util.Response
// @Router /api/admin/challenges [post]
func (c *ChallengeController) Create(ctx *gin.Context) {
	var body challengeBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !body.Kind.Valid() {
		util.BadRequest(ctx, "invalid kind")
		return
	}

	challenge := &model.Challenge{
		Slug:        body.Slug,
		Kind:        body.Kind,
		Title:       body.Title,
		Description: body.Description,
		Difficulty:  body.Difficulty,
		Language:    body.Language,
		StarterCode: body.StarterCode,
		Enabled:     body.Enabled,
		Order:       body.Order,
	}
	if err := c.Service.Create(ctx.Request.Context(), challenge); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, challenge)
}

// @Summary 更新题目
// @Description 覆盖题目的基础字段，测试用例通过专门接口整组替换
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body challengeBody true "题目信息"
// @Success 200 {object} util.Response
// @Router /api/admin/challenges/{id} [put]
func (c *ChallengeController) Update(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	var body challengeBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !body.Kind.Valid() {
		util.BadRequest(ctx, "invalid kind")
		return
	}

	challenge, err := c.Service.Repo.FindByID(id)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	challenge.Slug = body.Slug
	challenge.Kind = body.Kind
	challenge.Title = body.Title
	challenge.Description = body.Description
	challenge.Difficulty = body.Difficulty
	challenge.Language = body.Language
	challenge.StarterCode = body.StarterCode
	challenge.Enabled = body.Enabled
	challenge.Order = body.Order

	if err := c.Service.Update(ctx.Request.Context(), challenge); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, challenge)
}

// @Summary 删除题目
// @Description 连同已上传的起始文件压缩包一起清理
// @Tags 题目管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/admin/challenges/{id} [delete]
func (c *ChallengeController) Delete(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.Service.Delete(ctx.Request.Context(), id); err != nil {
		if err == util.ErrChallengeNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary 管理端题目列表（含禁用）
// @Tags 题目管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/challenges [get]
func (c *ChallengeController) ListAll(ctx *gin.Context) {
	page, limit := parsePagination(ctx)
	challenges, total, err := c.Service.Repo.ListAll(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: challenges, Total: total, Page: page, Limit: limit})
}

// @Summary 启用/禁用题目
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body object true "enabled"
// @Success 200 {object} util.Response
// @Router /api/admin/challenges/{id}/enabled [put]
func (c *ChallengeController) SetEnabled(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.Service.SetEnabled(ctx.Request.Context(), id, body.Enabled); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"enabled": body.Enabled})
}

// @Summary 整组替换题目的测试用例
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body object true "cases [{input, expectedOutput, hidden}]"
// @Success 200 {object} util.Response
// @Router /api/admin/challenges/{id}/test-cases [put]
func (c *ChallengeController) ReplaceTestCases(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	var body struct {
		Cases []struct {
			Input          string `json:"input"`
			ExpectedOutput string `json:"expectedOutput"`
			Hidden         bool   `json:"hidden"`
		} `json:"cases" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cases := make([]model.TestCase, 0, len(body.Cases))
	for _, tc := range body.Cases {
		cases = append(cases, model.TestCase{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			Hidden:         tc.Hidden,
		})
	}

	if err := c.Service.ReplaceTestCases(ctx.Request.Context(), id, cases); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"count": len(cases)})
}

// @Summary 上传起始文件压缩包
// @Tags 题目管理
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param file formData file true "zip 压缩包"
// @Success 200 {object} util.Response
// @Router /api/admin/challenges/{id}/archive [post]
func (c *ChallengeController) UploadArchive(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	key, err := c.Service.AttachArchive(ctx.Request.Context(), id, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"archiveKey": key})
}
