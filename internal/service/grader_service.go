package service

import (
	"context"
	"strings"

	"seccode_backend/internal/model"
	"seccode_backend/pkg/logger"
	"seccode_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// GraderService 按声明顺序串行执行测试用例并汇总结论
type GraderService struct {
	Executor   CodeExecutor
	Completion *CompletionService
}

func NewGraderService(executor CodeExecutor, completion *CompletionService) *GraderService {
	return &GraderService{
		Executor:   executor,
		Completion: completion,
	}
}

// Evaluate 执行一次提交
// 无测试用例时走裸跑模式：执行一次，原样返回输出，不给通过与否的结论
func (s *GraderService) Evaluate(ctx context.Context, submission *model.Submission) *model.Verdict {
	if len(submission.TestCases) == 0 {
		return s.bareRun(ctx, submission)
	}

	results := make([]model.TestResult, 0, len(submission.TestCases))
	for _, tc := range submission.TestCases {
		exec := s.Executor.Execute(ctx, submission.Language, submission.Source, tc.Input)

		// 比较前各做一次首尾修剪，除此之外严格逐字节相等
		// 期望输出为空串时实际输出也必须为空串
		actual := strings.TrimSpace(exec.Stdout)
		expected := strings.TrimSpace(tc.ExpectedOutput)
		passed := exec.ExitCode == 0 && !exec.TimedOut && actual == expected

		results = append(results, model.TestResult{
			Passed:         passed,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			ActualOutput:   exec.Stdout,
			Hidden:         tc.Hidden,
		})
	}

	verdict := &model.Verdict{
		TestResults: results,
		AllPassed:   model.ComputeAllPassed(results),
	}
	if !verdict.AllPassed {
		verdict.ExitCode = 1
	}
	return verdict
}

func (s *GraderService) bareRun(ctx context.Context, submission *model.Submission) *model.Verdict {
	exec := s.Executor.Execute(ctx, submission.Language, submission.Source, "")
	return &model.Verdict{
		TestResults: []model.TestResult{},
		AllPassed:   false,
		ExitCode:    exec.ExitCode,
		Stdout:      exec.Stdout,
		Stderr:      exec.Stderr,
		TimedOut:    exec.TimedOut,
	}
}

// GradeOutcome 判题结论与完成记录的落库结果分开上报
// 落库失败不改变判题结论本身
type GradeOutcome struct {
	Verdict            *model.Verdict
	CompletionRecorded bool
	CompletionFailed   bool
}

// GradeChallenge 针对目录题目的完整判题流程
func (s *GraderService) GradeChallenge(ctx context.Context, userID uint, challenge *model.Challenge, language model.SubmissionLanguage, source string) *GradeOutcome {
	submission := &model.Submission{
		Language:    language,
		Source:      source,
		ContentSlug: challenge.Slug,
		TestCases:   challenge.TestCases,
	}

	verdict := s.Evaluate(ctx, submission)

	outcome := &GradeOutcome{Verdict: verdict}

	verdictLabel := "failed"
	if verdict.AllPassed {
		verdictLabel = "passed"
	}
	monitoring.SubmissionCounter.WithLabelValues(string(challenge.Kind), verdictLabel).Inc()

	if verdict.AllPassed {
		if err := s.Completion.Record(userID, challenge.Slug, challenge.Kind, true); err != nil {
			logger.Log.Error("failed to record completion",
				zap.Uint("userID", userID),
				zap.String("slug", challenge.Slug),
				zap.Error(err))
			outcome.CompletionFailed = true
		} else {
			outcome.CompletionRecorded = true
		}
	}

	return outcome
}

// RedactVerdict 返回对学生可见的副本：隐藏用例不暴露输入与期望/实际输出
func RedactVerdict(v *model.Verdict) *model.Verdict {
	redacted := *v
	redacted.TestResults = make([]model.TestResult, len(v.TestResults))
	for i, r := range v.TestResults {
		if r.Hidden {
			redacted.TestResults[i] = model.TestResult{
				Passed: r.Passed,
				Hidden: true,
			}
		} else {
			redacted.TestResults[i] = r
		}
	}
	return &redacted
}
