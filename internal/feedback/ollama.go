// Package feedback wraps the external text-generation service that
// reviews student code.
//
// The service is an Ollama-style endpoint: a single POST to
// {base}/api/generate with a prompt, answered with generated prose. We
// treat it strictly as a black box — one attempt, a hard timeout, and a
// normalized error when anything goes wrong. Raw transport errors are
// preserved in the error chain for logging but the client-facing message
// never includes them.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sakif/codespace/internal/apperror"
)

// Timeout bounds the full round trip. Generation on a small local model
// can legitimately take a minute or two, hence the generous value.
const Timeout = 120 * time.Second

// promptTemplate is the exact prompt sent to the model. %s is the
// student's code.
const promptTemplate = "Review this code:\n%s\nProvide feedback on any issues."

// Analyzer is what the submission service depends on. Tests substitute a
// fake; OllamaClient is the real implementation.
type Analyzer interface {
	Analyze(ctx context.Context, code string) (string, error)
}

// OllamaClient calls an Ollama /api/generate endpoint.
type OllamaClient struct {
	client *resty.Client
	model  string
	logger *slog.Logger
}

var _ Analyzer = (*OllamaClient)(nil)

// generateRequest is the /api/generate request body. Stream is always
// false — we want the complete response in one JSON document.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the subset of the /api/generate response we use.
type generateResponse struct {
	Response string `json:"response"`
}

// NewOllamaClient creates a client for the configured base URL and model.
func NewOllamaClient(baseURL, model string, logger *slog.Logger) *OllamaClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(Timeout)

	return &OllamaClient{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Analyze sends the code for review and returns the trimmed feedback
// text. On any failure — network error, timeout, non-2xx status, empty
// response — it returns an Upstream error with a client-safe message.
//
// Exactly one attempt is made. A failed analysis is reported to the
// caller, never retried or hidden.
func (c *OllamaClient) Analyze(ctx context.Context, code string) (string, error) {
	var result generateResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Model:  c.model,
			Prompt: fmt.Sprintf(promptTemplate, code),
			Stream: false,
		}).
		SetResult(&result).
		Post("/api/generate")

	if err != nil {
		c.logger.Error("feedback service request failed",
			slog.String("model", c.model),
			slog.String("error", err.Error()),
		)
		return "", apperror.Upstream("Failed to analyze code: feedback service unavailable", err)
	}

	if resp.IsError() {
		c.logger.Error("feedback service returned error status",
			slog.String("model", c.model),
			slog.Int("status", resp.StatusCode()),
		)
		return "", apperror.Upstream("Failed to analyze code: feedback service unavailable",
			fmt.Errorf("feedback: unexpected status %d", resp.StatusCode()))
	}

	text := strings.TrimSpace(result.Response)
	if text == "" {
		return "", apperror.Upstream("Failed to analyze code: feedback service returned no content",
			fmt.Errorf("feedback: empty response body"))
	}

	return text, nil
}
