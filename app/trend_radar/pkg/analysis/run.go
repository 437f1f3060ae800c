package analysis

import (
	"time"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

// RunContext 单次分析运行的状态。按值传递，每个步骤返回更新后的副本，运行之间不共享。
type RunContext struct {
	RunID        string    `json:"run_id"`
	Partial      bool      `json:"partial_analysis"`
	Issues       []string  `json:"issues"`
	LLMAvailable bool      `json:"llm_available"`
	LLMFailures  int       `json:"llm_failure_count"`
	Started      time.Time `json:"started"`
}

func newRunContext(runID string, v ValidationResult, llmAvailable bool, started time.Time) RunContext {
	return RunContext{
		RunID:        runID,
		Partial:      !v.Valid,
		Issues:       v.Issues,
		LLMAvailable: llmAvailable,
		Started:      started,
	}
}

// withFailure 记一次协作方失败
func (rc RunContext) withFailure() RunContext {
	rc.LLMFailures++
	return rc
}

// Confidence 部分分析或失败超过 2 次直接为 low；其余按已分析板块数升级。
// 未配置协作方同样视为降级，结果为 low。
func (rc RunContext) Confidence(sectorsAnalyzed int) model.Confidence {
	switch {
	case rc.Partial || rc.LLMFailures > 2 || !rc.LLMAvailable:
		return model.ConfidenceLow
	case sectorsAnalyzed >= 3 && rc.LLMFailures == 0:
		return model.ConfidenceHigh
	case sectorsAnalyzed >= 2:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}
