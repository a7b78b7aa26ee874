package service

import (
	"context"
	"testing"

	"seccode_backend/internal/model"
	"seccode_backend/internal/repository"
)

// stubExecutor 按 stdin 返回预置输出
type stubExecutor struct {
	outputs map[string]*model.ExecutionResult
	calls   []string
}

func (s *stubExecutor) Execute(_ context.Context, _ model.SubmissionLanguage, _ string, stdin string) *model.ExecutionResult {
	s.calls = append(s.calls, stdin)
	if result, ok := s.outputs[stdin]; ok {
		return result
	}
	return &model.ExecutionResult{ExitCode: 1, Stderr: "no stub output"}
}

func newGrader(t *testing.T, exec CodeExecutor) *GraderService {
	t.Helper()
	completion := NewCompletionService(repository.NewCompletionRepository(newTestDB(t)))
	return NewGraderService(exec, completion)
}

func overflowSubmission() *model.Submission {
	return &model.Submission{
		Language:    model.LanguageC,
		Source:      "int main(void) { return 0; }",
		ContentSlug: "safe-addition",
		TestCases: []model.TestCase{
			{Input: "2147483647 1", ExpectedOutput: "OVERFLOW"},
			{Input: "100 200", ExpectedOutput: "300"},
		},
	}
}

func TestEvaluateAllPass(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]*model.ExecutionResult{
		"2147483647 1": {Stdout: "OVERFLOW", ExitCode: 0},
		"100 200":      {Stdout: "300", ExitCode: 0},
	}}
	grader := newGrader(t, exec)

	verdict := grader.Evaluate(context.Background(), overflowSubmission())

	if !verdict.AllPassed {
		t.Fatal("expected all tests to pass")
	}
	if len(verdict.TestResults) != 2 {
		t.Fatalf("expected 2 results, got %d", len(verdict.TestResults))
	}
	for i, r := range verdict.TestResults {
		if !r.Passed {
			t.Errorf("result %d not passed", i)
		}
	}
	if verdict.ExitCode != 0 {
		t.Errorf("exitCode = %d, want 0", verdict.ExitCode)
	}
}

func TestEvaluateSecondCaseFails(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]*model.ExecutionResult{
		"2147483647 1": {Stdout: "OVERFLOW", ExitCode: 0},
		"100 200":      {Stdout: "301", ExitCode: 0},
	}}
	grader := newGrader(t, exec)

	verdict := grader.Evaluate(context.Background(), overflowSubmission())

	if verdict.AllPassed {
		t.Fatal("expected failure")
	}
	if !verdict.TestResults[0].Passed {
		t.Error("first case should pass")
	}
	if verdict.TestResults[1].Passed {
		t.Error("second case should fail")
	}
	if verdict.ExitCode != 1 {
		t.Errorf("exitCode = %d, want 1", verdict.ExitCode)
	}
}

func TestEvaluateRunsCasesInDeclaredOrder(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]*model.ExecutionResult{
		"2147483647 1": {Stdout: "OVERFLOW", ExitCode: 0},
		"100 200":      {Stdout: "300", ExitCode: 0},
	}}
	grader := newGrader(t, exec)

	grader.Evaluate(context.Background(), overflowSubmission())

	if len(exec.calls) != 2 || exec.calls[0] != "2147483647 1" || exec.calls[1] != "100 200" {
		t.Errorf("cases executed out of order: %v", exec.calls)
	}
}

func TestEvaluateTrimsBeforeComparing(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]*model.ExecutionResult{
		"in": {Stdout: "42\n", ExitCode: 0},
	}}
	grader := newGrader(t, exec)

	verdict := grader.Evaluate(context.Background(), &model.Submission{
		Language:  model.LanguageC,
		Source:    "x",
		TestCases: []model.TestCase{{Input: "in", ExpectedOutput: "42"}},
	})

	if !verdict.AllPassed {
		t.Error("trailing newline must not fail a correct answer")
	}
}

func TestEvaluateInternalWhitespaceStaysStrict(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]*model.ExecutionResult{
		"in": {Stdout: "1  2", ExitCode: 0},
	}}
	grader := newGrader(t, exec)

	verdict := grader.Evaluate(context.Background(), &model.Submission{
		Language:  model.LanguageC,
		Source:    "x",
		TestCases: []model.TestCase{{Input: "in", ExpectedOutput: "1 2"}},
	})

	if verdict.AllPassed {
		t.Error("internal whitespace differences must fail")
	}
}

func TestEvaluateEmptyExpectedRequiresEmptyActual(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]*model.ExecutionResult{
		"quiet": {Stdout: "\n", ExitCode: 0},
		"noisy": {Stdout: "x", ExitCode: 0},
	}}
	grader := newGrader(t, exec)

	verdict := grader.Evaluate(context.Background(), &model.Submission{
		Language: model.LanguageC,
		Source:   "x",
		TestCases: []model.TestCase{
			{Input: "quiet", ExpectedOutput: ""},
			{Input: "noisy", ExpectedOutput: ""},
		},
	})

	if !verdict.TestResults[0].Passed {
		t.Error("whitespace-only output should satisfy empty expectation")
	}
	if verdict.TestResults[1].Passed {
		t.Error("non-empty output must not satisfy empty expectation")
	}
}

func TestEvaluateTimedOutCaseCannotPass(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]*model.ExecutionResult{
		"in": {Stdout: "", ExitCode: 1, TimedOut: true},
	}}
	grader := newGrader(t, exec)

	verdict := grader.Evaluate(context.Background(), &model.Submission{
		Language:  model.LanguageC,
		Source:    "x",
		TestCases: []model.TestCase{{Input: "in", ExpectedOutput: ""}},
	})

	if verdict.AllPassed {
		t.Error("a timed-out case must never count as passed")
	}
}

func TestEvaluateEmptyCaseListIsNeverAPass(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]*model.ExecutionResult{
		"": {Stdout: "hello", ExitCode: 0},
	}}
	grader := newGrader(t, exec)

	verdict := grader.Evaluate(context.Background(), &model.Submission{
		Language: model.LanguageC,
		Source:   "x",
	})

	if verdict.AllPassed {
		t.Fatal("empty test-case list must not auto-complete")
	}
	if verdict.Stdout != "hello" {
		t.Errorf("bare run should surface raw stdout, got %q", verdict.Stdout)
	}
}

func TestComputeAllPassedAgreesWithVerdict(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]*model.ExecutionResult{
		"2147483647 1": {Stdout: "OVERFLOW", ExitCode: 0},
		"100 200":      {Stdout: "300", ExitCode: 0},
	}}
	grader := newGrader(t, exec)

	verdict := grader.Evaluate(context.Background(), overflowSubmission())

	if model.ComputeAllPassed(verdict.TestResults) != verdict.AllPassed {
		t.Error("recomputed allPassed disagrees with verdict")
	}
}

func TestGradeChallengeRecordsCompletionOnPass(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]*model.ExecutionResult{
		"2147483647 1": {Stdout: "OVERFLOW", ExitCode: 0},
		"100 200":      {Stdout: "300", ExitCode: 0},
	}}
	grader := newGrader(t, exec)

	challenge := &model.Challenge{
		Slug: "safe-addition",
		Kind: model.KindPuzzle,
		TestCases: []model.TestCase{
			{Input: "2147483647 1", ExpectedOutput: "OVERFLOW"},
			{Input: "100 200", ExpectedOutput: "300"},
		},
	}

	outcome := grader.GradeChallenge(context.Background(), 1, challenge, model.LanguageC, "src")
	if !outcome.Verdict.AllPassed {
		t.Fatal("expected pass")
	}
	if !outcome.CompletionRecorded {
		t.Fatal("completion not recorded on full pass")
	}

	record, err := grader.Completion.Repo.FindByUserAndSlug(1, "safe-addition")
	if err != nil {
		t.Fatalf("find completion: %v", err)
	}
	if record.ContentType != model.KindPuzzle {
		t.Errorf("contentType = %s", record.ContentType)
	}
}

func TestGradeChallengeSkipsCompletionOnFailure(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]*model.ExecutionResult{
		"2147483647 1": {Stdout: "OVERFLOW", ExitCode: 0},
		"100 200":      {Stdout: "301", ExitCode: 0},
	}}
	grader := newGrader(t, exec)

	challenge := &model.Challenge{
		Slug: "safe-addition",
		Kind: model.KindPuzzle,
		TestCases: []model.TestCase{
			{Input: "2147483647 1", ExpectedOutput: "OVERFLOW"},
			{Input: "100 200", ExpectedOutput: "300"},
		},
	}

	outcome := grader.GradeChallenge(context.Background(), 1, challenge, model.LanguageC, "src")
	if outcome.Verdict.AllPassed {
		t.Fatal("expected failure")
	}
	if outcome.CompletionRecorded {
		t.Fatal("completion must not be recorded on failure")
	}

	if _, err := grader.Completion.Repo.FindByUserAndSlug(1, "safe-addition"); err == nil {
		t.Fatal("no completion row expected")
	}
}

func TestRedactVerdictHidesHiddenCases(t *testing.T) {
	verdict := &model.Verdict{
		TestResults: []model.TestResult{
			{Passed: true, Input: "a", ExpectedOutput: "1", ActualOutput: "1"},
			{Passed: false, Input: "secret", ExpectedOutput: "2", ActualOutput: "3", Hidden: true},
		},
	}

	redacted := RedactVerdict(verdict)

	if redacted.TestResults[0].Input != "a" {
		t.Error("visible case must stay intact")
	}
	hidden := redacted.TestResults[1]
	if hidden.Input != "" || hidden.ExpectedOutput != "" || hidden.ActualOutput != "" {
		t.Errorf("hidden case leaked: %+v", hidden)
	}
	if hidden.Passed || !hidden.Hidden {
		t.Error("hidden case must keep passed flag and hidden marker")
	}

	// 原始结论不被改动
	if verdict.TestResults[1].ExpectedOutput != "2" {
		t.Error("redaction mutated the original verdict")
	}
}
