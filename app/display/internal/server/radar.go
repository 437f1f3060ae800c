package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trend_radar/app/display/internal/conf"
	"github.com/iWorld-y/trend_radar/app/display/internal/data"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/config"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/engine"
	trLogger "github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
)

// RadarConfig 将 internal/conf.Radar 转换为 pkg/config.Config，未配置的字段保留默认值
func RadarConfig(c *conf.Radar) *config.Config {
	cfg := config.Default()
	if c == nil {
		return cfg
	}

	if c.Llm != nil {
		cfg.LLM = config.LLMConfig{
			Provider:    c.Llm.Provider,
			BaseURL:     c.Llm.BaseUrl,
			APIKey:      c.Llm.ApiKey,
			APIVersion:  c.Llm.ApiVersion,
			Model:       c.Llm.Model,
			Temperature: c.Llm.Temperature,
			MaxTokens:   int(c.Llm.MaxTokens),
			Timeout:     int(c.Llm.Timeout),
		}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{
			Level: c.Log.Level,
			File:  c.Log.File,
		}
	}
	if c.Concurrency != nil {
		cfg.Concurrency = config.ConcurrencyConfig{
			QPS:     int(c.Concurrency.Qps),
			RPM:     int(c.Concurrency.Rpm),
			Workers: int(c.Concurrency.Workers),
		}
	}
	if c.Extraction != nil {
		cfg.Extraction.OutputDir = c.Extraction.OutputDir
		if c.Extraction.GenerateAnalysis != nil {
			cfg.Extraction.GenerateAnalysis = *c.Extraction.GenerateAnalysis
		}
		if c.Extraction.MinImageSize > 0 {
			cfg.Extraction.MinImageSize = int(c.Extraction.MinImageSize)
		}
	}

	// 密钥等敏感项允许由环境变量覆盖
	cfg.ApplyEnv()
	return cfg
}

// NewRadarEngine 初始化 trend_radar 引擎，与展示服务共享同一个文档存储
func NewRadarEngine(c *conf.Radar, d *data.Data, logger log.Logger) (*engine.Engine, func(), error) {
	if c == nil {
		return nil, func() {}, nil
	}

	cfg := RadarConfig(c)

	// 初始化日志
	if err := trLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.NewHelper(logger).Errorf("Failed to init trend_radar logger: %v", err)
		_ = trLogger.InitLogger("info", "") // 降级处理
	}

	// 初始化核心引擎
	eng, err := engine.NewEngine(context.Background(), cfg, d.Store())
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("Cleaning up trend_radar engine")
	}

	return eng, cleanup, nil
}
