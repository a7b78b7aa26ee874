package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"seccode_backend/internal/config"
	"seccode_backend/internal/model"
	"seccode_backend/pkg/logger"
	"seccode_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const defaultSandboxTimeout = 30 * time.Second

// CodeExecutor 代码执行接口，判题服务通过它调用沙箱
type CodeExecutor interface {
	Execute(ctx context.Context, language model.SubmissionLanguage, source, stdin string) *model.ExecutionResult
}

// SandboxClient 外部沙箱（编译+运行服务）的 HTTP 客户端
// 无本地状态，源码原样透传，绝不在本进程解析或执行
type SandboxClient struct {
	mu         sync.RWMutex
	url        string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

func NewSandboxClient(cfg *config.Config) *SandboxClient {
	timeout := defaultSandboxTimeout
	if cfg.Sandbox.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Sandbox.TimeoutSeconds) * time.Second
	}
	return &SandboxClient{
		url:     cfg.Sandbox.URL,
		apiKey:  cfg.Sandbox.APIKey,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Reload 配置热更新回调
func (s *SandboxClient) Reload(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = cfg.Sandbox.URL
	s.apiKey = cfg.Sandbox.APIKey
	if cfg.Sandbox.TimeoutSeconds > 0 {
		s.timeout = time.Duration(cfg.Sandbox.TimeoutSeconds) * time.Second
		s.httpClient.Timeout = s.timeout
	}
}

type sandboxRequest struct {
	Language string `json:"language"`
	Source   string `json:"source"`
	Stdin    string `json:"stdin"`
}

type sandboxResponse struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	ExitCode      int    `json:"exitCode"`
	TimedOut      bool   `json:"timedOut"`
	CompileOutput string `json:"compileOutput"`
}

// Execute 提交一次执行
// 沙箱不可用或未配置时降级为 exitCode=1 的结果，而不是让整个请求崩溃
func (s *SandboxClient) Execute(ctx context.Context, language model.SubmissionLanguage, source, stdin string) *model.ExecutionResult {
	s.mu.RLock()
	url := s.url
	apiKey := s.apiKey
	timeout := s.timeout
	client := s.httpClient
	s.mu.RUnlock()

	if url == "" {
		monitoring.SandboxFailureCounter.WithLabelValues("not_configured").Inc()
		return &model.ExecutionResult{
			ExitCode: 1,
			Stderr:   "code runner is not configured",
		}
	}

	if !language.Valid() {
		return &model.ExecutionResult{
			ExitCode: 1,
			Stderr:   fmt.Sprintf("unsupported language: %s", language),
		}
	}

	body, err := json.Marshal(sandboxRequest{
		Language: string(language),
		Source:   source,
		Stdin:    stdin,
	})
	if err != nil {
		return &model.ExecutionResult{ExitCode: 1, Stderr: "failed to encode execution request"}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &model.ExecutionResult{ExitCode: 1, Stderr: "failed to build execution request"}
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			monitoring.SandboxFailureCounter.WithLabelValues("timeout").Inc()
			return &model.ExecutionResult{
				ExitCode: 1,
				TimedOut: true,
				Stderr:   "execution timed out",
			}
		}
		monitoring.SandboxFailureCounter.WithLabelValues("network").Inc()
		logger.Log.Error("sandbox request failed", zap.Error(err))
		return &model.ExecutionResult{
			ExitCode: 1,
			Stderr:   "code runner is unavailable",
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || resp.StatusCode != http.StatusOK {
		monitoring.SandboxFailureCounter.WithLabelValues("bad_response").Inc()
		logger.Log.Error("sandbox returned bad response",
			zap.Int("status", resp.StatusCode), zap.Error(err))
		return &model.ExecutionResult{
			ExitCode: 1,
			Stderr:   "code runner returned an invalid response",
		}
	}

	var out sandboxResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		monitoring.SandboxFailureCounter.WithLabelValues("bad_response").Inc()
		return &model.ExecutionResult{
			ExitCode: 1,
			Stderr:   "code runner returned an invalid response",
		}
	}

	return &model.ExecutionResult{
		Stdout:        out.Stdout,
		Stderr:        out.Stderr,
		ExitCode:      out.ExitCode,
		TimedOut:      out.TimedOut,
		CompileOutput: out.CompileOutput,
	}
}
