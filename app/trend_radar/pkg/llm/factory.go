package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/config"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
)

// New 按配置创建带限流的 Client；未启用 LLM 时返回 (nil, nil)，调用方走模板兜底
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	if !cfg.LLM.Enabled() {
		logger.Log.Info("未配置 LLM，将使用模板生成摘要与解读")
		return nil, nil
	}

	var (
		p   Provider
		err error
	)
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai", "azure":
		p, err = NewOpenAI(ctx, cfg.LLM)
	case "gemini", "google":
		p, err = NewGemini(ctx, cfg.LLM)
	case "claude", "anthropic":
		p = NewClaude(cfg.LLM)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, err
	}

	limiter := NewLimiter(cfg.Concurrency)
	logger.Log.Infof("LLM 已配置: provider=%s model=%s limit=%.2f req/s burst=%d",
		cfg.LLM.Provider, cfg.LLM.Model, float64(limiter.Limit()), limiter.Burst())
	return NewGuarded(p, limiter), nil
}
