package controller

import (
	"seccode_backend/internal/model"
	"seccode_backend/internal/service"
	"seccode_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SubmissionController 判题与自由执行的 API
type SubmissionController struct {
	Grader      *service.GraderService
	Challenges  *service.ChallengeService
	AuthService *service.AuthService
}

func NewSubmissionController(grader *service.GraderService, challenges *service.ChallengeService, authService *service.AuthService) *SubmissionController {
	return &SubmissionController{
		Grader:      grader,
		Challenges:  challenges,
		AuthService: authService,
	}
}

type submitBody struct {
	Language model.SubmissionLanguage `json:"language" binding:"required"`
	Source   string                   `json:"source" binding:"required"`
}

// @Summary 提交题解判题
// @Description 按声明顺序串行执行全部测试用例；全部通过时幂等记录完成。
// @Description 完成记录落库失败不影响判题结论，二者分开上报。
// @Tags 判题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "题目标识"
// @Param body body submitBody true "language: c|cpp, source"
// @Success 200 {object} util.Response
// @Router /api/challenges/{slug}/submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var body submitBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !body.Language.Valid() {
		util.BadRequest(ctx, util.ErrInvalidLanguage.Error())
		return
	}

	challenge, err := c.Challenges.GetForGrading(ctx.Param("slug"))
	if err != nil {
		if err == util.ErrChallengeNotFound || err == util.ErrChallengeDisabled {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	outcome := c.Grader.GradeChallenge(ctx.Request.Context(), user.ID, challenge, body.Language, body.Source)
	verdict := service.RedactVerdict(outcome.Verdict)

	util.Success(ctx, gin.H{
		"stdout":             "",
		"stderr":             "",
		"exitCode":           verdict.ExitCode,
		"testResults":        verdict.TestResults,
		"allTestsPassed":     verdict.AllPassed,
		"completionRecorded": outcome.CompletionRecorded,
		"completionFailed":   outcome.CompletionFailed,
	})
}

// @Summary 自由执行（游乐场）
// @Description 无测试用例的裸跑模式：执行一次并原样返回输出，不判通过与否，不计配额。
// @Tags 判题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "language: c|cpp, source, stdin"
// @Success 200 {object} util.Response
// @Router /api/playground/run [post]
func (c *SubmissionController) PlaygroundRun(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var body struct {
		Language model.SubmissionLanguage `json:"language" binding:"required"`
		Source   string                   `json:"source" binding:"required"`
		Stdin    string                   `json:"stdin"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !body.Language.Valid() {
		util.BadRequest(ctx, util.ErrInvalidLanguage.Error())
		return
	}

	exec := c.Grader.Executor.Execute(ctx.Request.Context(), body.Language, body.Source, body.Stdin)

	util.Success(ctx, gin.H{
		"stdout":   exec.Stdout,
		"stderr":   exec.Stderr,
		"exitCode": exec.ExitCode,
		"timedOut": exec.TimedOut,
	})
}
