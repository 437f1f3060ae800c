package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/config"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
)

// Provider 具体模型厂商的适配器，错误形态不做约束
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteVision(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
	Model() string
}

// Guarded 在 Provider 外加限流、429 退避重试与 panic 兜底，对外只返回 *CollaboratorError
type Guarded struct {
	provider   Provider
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
}

// NewLimiter 按 RPM/QPS 创建限流器；RPM 未配置时不限流
func NewLimiter(c config.ConcurrencyConfig) *rate.Limiter {
	if c.RPM <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := c.QPS
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(c.RPM)/60.0), burst)
}

// NewGuarded 包装 Provider
func NewGuarded(p Provider, limiter *rate.Limiter) *Guarded {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Guarded{
		provider:   p,
		limiter:    limiter,
		maxRetries: 3,
		baseDelay:  2 * time.Second,
	}
}

// Model 底层模型名
func (g *Guarded) Model() string { return g.provider.Model() }

// Complete 文本补全
func (g *Guarded) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return g.do(ctx, "complete", KindCall, func(ctx context.Context) (string, error) {
		return g.provider.Complete(ctx, systemPrompt, userPrompt)
	})
}

// CompleteVision 图像解读
func (g *Guarded) CompleteVision(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if len(image) == 0 {
		return "", &CollaboratorError{Op: "vision", Kind: KindVision, Err: errors.New("no image data")}
	}
	return g.do(ctx, "vision", KindVision, func(ctx context.Context) (string, error) {
		return g.provider.CompleteVision(ctx, image, mimeType, prompt)
	})
}

func (g *Guarded) do(ctx context.Context, op string, kind ErrorKind, call func(context.Context) (string, error)) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = &CollaboratorError{Op: op, Kind: KindPanic, Err: fmt.Errorf("%v", r)}
		}
	}()

	var lastErr error
	for i := 0; i <= g.maxRetries; i++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", &CollaboratorError{Op: op, Kind: kind, Err: err}
		}

		text, err := call(ctx)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				return "", &CollaboratorError{Op: op, Kind: KindEmpty, Err: errors.New("empty response")}
			}
			return text, nil
		}

		if !isRateLimited(err) {
			return "", AsCollaboratorError(op, kind, err)
		}
		lastErr = err
		if i < g.maxRetries {
			delay := g.baseDelay * time.Duration(1<<i)
			logger.Log.Warnf("LLM 触发限流 [%s]，%s 后重试 (%d/%d)", op, delay, i+1, g.maxRetries)
			select {
			case <-ctx.Done():
				return "", &CollaboratorError{Op: op, Kind: kind, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}
	}
	return "", &CollaboratorError{Op: op, Kind: KindRateLimit, Err: lastErr}
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests") || strings.Contains(msg, "rate limit")
}
