package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

const (
	maxIndicatorSignals = 10
	weightPrecision     = 10000
	unknownIndicator    = "Unknown"
)

// SectorWeights 按系列数占比加权，四位小数，舍入残差计入最大权重；总数为 0 时四个板块各 0.25
func SectorWeights(sectors map[model.Sector]model.SectorAnalysis) map[model.Sector]float64 {
	total := 0
	for _, a := range sectors {
		total += a.SeriesCount
	}

	weights := make(map[model.Sector]float64, len(model.Sectors))
	if total == 0 {
		for _, s := range model.Sectors {
			weights[s] = 0.25
		}
		return weights
	}

	var sum float64
	var largest model.Sector
	for _, s := range model.Sectors {
		a, ok := sectors[s]
		if !ok {
			continue
		}
		w := math.Round(float64(a.SeriesCount)/float64(total)*weightPrecision) / weightPrecision
		weights[s] = w
		sum += w
		if largest == "" || w > weights[largest] {
			largest = s
		}
	}
	weights[largest] = math.Round((weights[largest]+1-sum)*weightPrecision) / weightPrecision
	return weights
}

// WeightedScore Σ 权重 × 趋势分，四舍六入五成双后限制在 [1,5]
func WeightedScore(sectors map[model.Sector]model.SectorAnalysis, weights map[model.Sector]float64) int {
	if len(sectors) == 0 {
		return 3
	}
	var weighted float64
	for _, s := range model.Sectors {
		if a, ok := sectors[s]; ok {
			weighted += weights[s] * float64(a.DominantTrend.Score())
		}
	}
	score := int(math.RoundToEven(weighted))
	if score < 1 {
		score = 1
	}
	if score > 5 {
		score = 5
	}
	return score
}

// indicatorSignals 只看前 10 条图表解读，再丢弃方向缺失或无法解析的条目
func indicatorSignals(charts []chartInsight) []model.IndicatorSignal {
	if len(charts) > maxIndicatorSignals {
		charts = charts[:maxIndicatorSignals]
	}
	out := []model.IndicatorSignal{}
	for _, c := range charts {
		dir, ok := model.ParseTrendDirection(c.TrendDirection)
		if !ok {
			continue
		}
		name := c.Series
		if name == "" {
			name = unknownIndicator
		}
		sector := c.Sector
		if sector == "" {
			sector = model.SectorCore
		}
		page := c.Page
		if page < 1 {
			page = 1
		}
		signal := model.IndicatorSignal{IndicatorName: name, Sector: sector, Direction: dir, SourcePage: page}
		if phase, ok := model.ParseBusinessPhase(c.CurrentPhase); ok {
			signal.Phase = phase
		}
		out = append(out, signal)
	}
	return out
}

func impactOf(t model.DominantTrend) model.Impact {
	switch {
	case t.Growing():
		return model.ImpactPositive
	case t.Contracting():
		return model.ImpactNegative
	default:
		return model.ImpactNeutral
	}
}

// scoreSentiment 确定性情绪评分，不调用 LLM
func scoreSentiment(rc RunContext, sectors map[model.Sector]model.SectorAnalysis, charts []chartInsight) (model.SentimentScore, error) {
	weights := SectorWeights(sectors)
	score := WeightedScore(sectors, weights)
	label, err := model.LabelForScore(score)
	if err != nil {
		return model.SentimentScore{}, err
	}

	factors := []model.ContributingFactor{}
	var parts []string
	for _, s := range model.Sectors {
		a, ok := sectors[s]
		if !ok {
			continue
		}
		factors = append(factors, model.ContributingFactor{
			FactorName:  s.Title() + " Sector Trend",
			Impact:      impactOf(a.DominantTrend),
			Weight:      weights[s],
			Description: fmt.Sprintf("%s sector showing %s trend", s.Title(), a.DominantTrend),
		})
		parts = append(parts, fmt.Sprintf("%s (%s)", s, a.DominantTrend))
	}

	rationale := fmt.Sprintf("Sentiment based on analysis of %d sectors", len(sectors))
	if len(parts) > 0 {
		rationale += ": " + strings.Join(parts, ", ")
	}

	return model.NewSentimentScore(model.SentimentScore{
		Score:               score,
		Label:               label,
		Confidence:          rc.Confidence(len(sectors)),
		ContributingFactors: factors,
		SectorWeights:       weights,
		IndicatorSignals:    indicatorSignals(charts),
		Rationale:           rationale + ".",
	})
}
