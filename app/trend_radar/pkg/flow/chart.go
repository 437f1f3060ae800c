package flow

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/llm"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

const chartTextContextLimit = 3000

const visionPrompt = `You are analyzing an ITR Economics chart for the series "%s".
Chart type: %s.

Describe what the chart shows and answer with a single JSON object:
{
  "description": "2-4 sentence description of the chart",
  "trend_direction": "rising | falling | stable",
  "current_phase": "A | B | C | D (ITR business cycle phase)",
  "business_implications": "one or two sentences for business leaders",
  "key_patterns": ["pattern", "..."],
  "confidence": "high | medium | low"
}
Return only the JSON object.`

const chartTextSystemPrompt = `You are an economic analyst who explains ITR Economics charts to business leaders.`

const chartTextPrompt = `A %s chart for "%s" appears on a report page with the following text:

%s

Describe in 2-3 sentences what this chart most likely shows and what it means for businesses.`

// Interpreter 图表解读：视觉模型 → 文本模型 → 模板
type Interpreter struct {
	client llm.Client
}

// NewInterpreter client 为 nil 时直接走模板
func NewInterpreter(client llm.Client) *Interpreter {
	return &Interpreter{client: client}
}

type visionAnswer struct {
	Description          string   `json:"description"`
	TrendDirection       string   `json:"trend_direction"`
	CurrentPhase         string   `json:"current_phase"`
	BusinessImplications string   `json:"business_implications"`
	KeyPatterns          []string `json:"key_patterns"`
	Confidence           string   `json:"confidence"`
}

// Interpret 解读单个图表块，协作方的任何失败都不会向外传播
func (i *Interpreter) Interpret(ctx context.Context, block model.ContentBlock, pageText, seriesName string) model.ChartInterpretation {
	chartType := block.ChartType()
	if i.client == nil {
		return TemplateInterpretation(chartType, seriesName)
	}

	if chart := block.Content.Chart; chart != nil && len(chart.ImageData) > 0 {
		interp, err := i.vision(ctx, chart, seriesName)
		if err == nil {
			return interp
		}
		logger.Log.Warnf("第 %d 页图表视觉解读失败，改用文本解读: %v", block.PageNumber, err)
	}

	desc, err := i.client.Complete(ctx, chartTextSystemPrompt,
		fmt.Sprintf(chartTextPrompt, chartType, seriesLabel(seriesName), truncate(pageText, chartTextContextLimit)))
	if err == nil && strings.TrimSpace(desc) != "" {
		return model.ChartInterpretation{Description: strings.TrimSpace(desc), Confidence: model.ConfidenceMedium}
	}
	logger.Log.Warnf("第 %d 页图表文本解读失败，使用模板: %v", block.PageNumber, err)

	return TemplateInterpretation(chartType, seriesName)
}

func (i *Interpreter) vision(ctx context.Context, chart *model.ChartContent, seriesName string) (model.ChartInterpretation, error) {
	raw, err := i.client.CompleteVision(ctx, chart.ImageData, chart.MimeType,
		fmt.Sprintf(visionPrompt, seriesLabel(seriesName), chart.ChartType))
	if err != nil {
		return model.ChartInterpretation{}, err
	}

	var ans visionAnswer
	if err := llm.DecodeJSON("chart_vision", raw, &ans); err != nil {
		return model.ChartInterpretation{}, err
	}
	if strings.TrimSpace(ans.Description) == "" {
		return model.ChartInterpretation{}, &llm.CollaboratorError{Op: "chart_vision", Kind: llm.KindEmpty, Err: fmt.Errorf("no description")}
	}

	interp := model.ChartInterpretation{
		Description:          strings.TrimSpace(ans.Description),
		TrendDirection:       strings.ToLower(strings.TrimSpace(ans.TrendDirection)),
		CurrentPhase:         strings.TrimSpace(ans.CurrentPhase),
		BusinessImplications: strings.TrimSpace(ans.BusinessImplications),
		KeyPatterns:          ans.KeyPatterns,
		Confidence:           model.ConfidenceHigh,
	}
	if p, ok := model.ParseBusinessPhase(interp.CurrentPhase); ok {
		interp.CurrentPhase = string(p)
	}
	switch c := model.Confidence(strings.ToLower(strings.TrimSpace(ans.Confidence))); c {
	case model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow:
		interp.Confidence = c
	}
	return interp, nil
}

// Apply 把解读结果合并进图表块的副本
func Apply(block model.ContentBlock, interp model.ChartInterpretation, seriesName string) model.ContentBlock {
	out := block
	out.Interpretation = interp.Description
	out.Summary = fmt.Sprintf("%s for %s", block.ChartType(), seriesLabel(seriesName))

	saved := interp
	out.Metadata.VisionInterpretation = &saved
	if interp.TrendDirection != "" {
		out.Metadata.TrendDirection = interp.TrendDirection
	}
	if interp.CurrentPhase != "" {
		out.Metadata.CurrentPhase = interp.CurrentPhase
	}
	if interp.BusinessImplications != "" {
		out.Metadata.BusinessImplications = interp.BusinessImplications
	}
	if len(interp.KeyPatterns) > 0 {
		out.Metadata.KeyPatterns = interp.KeyPatterns
	}
	return out
}

// TemplateInterpretation 按图表类型生成的静态描述
func TemplateInterpretation(chartType model.ChartType, seriesName string) model.ChartInterpretation {
	series := seriesLabel(seriesName)
	var desc string
	switch chartType {
	case model.ChartRateOfChange:
		desc = fmt.Sprintf("Rate-of-Change chart showing the year-over-year percentage change in %s. "+
			"This chart displays the 12/12 rate (annual change), 3/12 rate (quarterly change), and 1/12 rate (monthly change) "+
			"to illustrate momentum and trend direction.", series)
	case model.ChartDataTrend:
		desc = fmt.Sprintf("Data Trend chart showing the actual values of %s over time. "+
			"Typically displays the 12-month moving average (12MMA) or 12-month moving total (12MMT) "+
			"to smooth seasonal variations and reveal underlying trends.", series)
	case model.ChartOverview:
		desc = fmt.Sprintf("Overview chart providing a long-term perspective on %s. "+
			"Shows historical data alongside forecasts to contextualize current conditions within the broader business cycle.", series)
	default:
		if seriesName == "" {
			desc = "Chart displaying economic data."
		} else {
			desc = fmt.Sprintf("Chart displaying %s economic data.", seriesName)
		}
	}
	return model.ChartInterpretation{Description: desc, Confidence: model.ConfidenceLow}
}

func seriesLabel(name string) string {
	if name == "" {
		return "economic data"
	}
	return name
}

// truncate 按字符截断
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
