package review

import (
	"context"
	"errors"
	"time"

	"github.com/tildaslashalef/codecritic/internal/claude"
	"github.com/tildaslashalef/codecritic/internal/config"
	"github.com/tildaslashalef/codecritic/internal/loggy"
	"github.com/tildaslashalef/codecritic/internal/metrics"
)

// MessageCreator sends a single request to the Messages API
type MessageCreator interface {
	CreateMessage(ctx context.Context, req claude.MessageRequest) (*claude.MessageResponse, error)
}

// CodeReviewer produces review text for a piece of code
type CodeReviewer interface {
	ReviewCode(ctx context.Context, code, language, description string) (string, error)
}

// Reviewer asks Claude for a review of a code snippet
type Reviewer struct {
	client      MessageCreator
	model       string
	maxTokens   int
	strictParse bool
	logger      *loggy.Logger
}

// NewReviewer creates a reviewer backed by client
func NewReviewer(client MessageCreator, cfg config.ClaudeConfig, logger *loggy.Logger) *Reviewer {
	return &Reviewer{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		strictParse: cfg.StrictParse,
		logger:      logger,
	}
}

// ReviewCode sends one request and returns the first text block of the reply.
// Transport failures and non-2xx replies come back as *ProviderError. A reply
// without review text yields FallbackReview, or ErrUnparsableResponse inside a
// *ProviderError when strict parsing is on.
func (r *Reviewer) ReviewCode(ctx context.Context, code, language, description string) (string, error) {
	system, user := BuildPrompts(code, language, description)

	start := time.Now()
	resp, err := r.client.CreateMessage(ctx, claude.MessageRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		System:    system,
		Messages: []claude.Message{
			{Role: "user", Content: user},
		},
	})
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveProviderCall(metrics.OutcomeFailed, elapsed)

		var apiErr *claude.APIError
		if errors.As(err, &apiErr) {
			r.logger.Error("Claude API returned an error",
				"status", apiErr.StatusCode,
				"type", apiErr.ErrorDetails.Type,
				"duration", elapsed)
		}
		return "", &ProviderError{Err: err}
	}

	if resp.Usage != nil {
		metrics.ObserveProviderTokens(resp.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}

	text, ok := resp.FirstText()
	if !ok {
		if r.strictParse {
			metrics.ObserveProviderCall(metrics.OutcomeUnparsable, elapsed)
			return "", &ProviderError{Err: ErrUnparsableResponse}
		}

		metrics.ObserveProviderCall(metrics.OutcomeFallback, elapsed)
		r.logger.Warn("Claude response had no review text, storing fallback",
			"content_blocks", len(resp.Content),
			"stop_reason", resp.StopReason)
		return FallbackReview, nil
	}

	metrics.ObserveProviderCall(metrics.OutcomeOK, elapsed)
	r.logger.Debug("Received review from Claude",
		"chars", len(text),
		"duration", elapsed)

	return text, nil
}
