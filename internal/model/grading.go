package model

// SubmissionLanguage 沙箱支持的语言
type SubmissionLanguage string

const (
	LanguageC   SubmissionLanguage = "c"
	LanguageCPP SubmissionLanguage = "cpp"
)

func (l SubmissionLanguage) Valid() bool {
	return l == LanguageC || l == LanguageCPP
}

// Submission 单次判题请求，不落库
type Submission struct {
	Language    SubmissionLanguage `json:"language"`
	Source      string             `json:"source"`
	ContentSlug string             `json:"contentSlug"`
	TestCases   []TestCase         `json:"testCases"`
}

// ExecutionResult 沙箱一次执行的原始结果
type ExecutionResult struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	ExitCode      int    `json:"exitCode"`
	TimedOut      bool   `json:"timedOut,omitempty"`
	CompileOutput string `json:"compileOutput,omitempty"`
}

// TestResult 与输入用例顺序一一对应
type TestResult struct {
	Passed         bool   `json:"passed"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	ActualOutput   string `json:"actualOutput"`
	Hidden         bool   `json:"hidden"`
}

// Verdict 判题结论，AllPassed 由 TestResults 推导
type Verdict struct {
	TestResults []TestResult `json:"testResults"`
	AllPassed   bool         `json:"allTestsPassed"`
	ExitCode    int          `json:"exitCode"`

	// 裸跑模式（无测试用例）时填充
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	TimedOut bool   `json:"timedOut,omitempty"`
}

// ComputeAllPassed 空用例列表不算通过，防止配置错误的题目自动完成
func ComputeAllPassed(results []TestResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// EntitlementDecision 门禁结论，派生值不落库
type EntitlementDecision struct {
	Allowed      bool        `json:"allowed"`
	LimitReached bool        `json:"limitReached"`
	LimitType    ContentKind `json:"limitType,omitempty"`
	CurrentUsage int         `json:"currentUsage"`
	Limit        int         `json:"limit"`
}
