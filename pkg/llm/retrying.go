package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/specforge-dev/specforge/pkg/retry"
)

// RetryingClient wraps a Client with a per-call timeout and backoff on
// retryable failures. Classified errors carry their own retryability;
// everything else is pattern-matched by the retry package.
type RetryingClient struct {
	inner   Client
	cfg     *retry.Config
	timeout time.Duration
	logger  *zap.Logger
}

var _ Client = (*RetryingClient)(nil)

// NewRetryingClient wraps inner. A nil cfg uses the retry defaults; a
// zero timeout leaves the caller's context bound alone.
func NewRetryingClient(inner Client, cfg *retry.Config, timeout time.Duration, logger *zap.Logger) *RetryingClient {
	return &RetryingClient{
		inner:   inner,
		cfg:     cfg,
		timeout: timeout,
		logger:  logger.Named("llm-retry"),
	}
}

// GenerateResponse implements Client.
func (c *RetryingClient) GenerateResponse(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
	attempt := 0
	return retry.DoWithResult(ctx, c.cfg, func() (string, error) {
		attempt++
		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		out, err := c.inner.GenerateResponse(callCtx, prompt, systemMessage, temperature)
		if err != nil && retry.IsRetryable(err) {
			c.logger.Warn("retryable model call failure",
				zap.Int("attempt", attempt), zap.Error(err))
		}
		return out, err
	})
}

// GetModel implements Client.
func (c *RetryingClient) GetModel() string {
	return c.inner.GetModel()
}
