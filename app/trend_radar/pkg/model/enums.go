package model

import (
	"fmt"
	"strings"
)

// Sector 经济板块
type Sector string

const (
	SectorCore          Sector = "core"
	SectorFinancial     Sector = "financial"
	SectorConstruction  Sector = "construction"
	SectorManufacturing Sector = "manufacturing"
)

// Sectors 固定板块顺序，分组与输出均按此顺序
var Sectors = []Sector{SectorCore, SectorFinancial, SectorConstruction, SectorManufacturing}

// Title 首字母大写的板块名
func (s Sector) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Valid 是否为四个已知板块之一
func (s Sector) Valid() bool {
	for _, known := range Sectors {
		if s == known {
			return true
		}
	}
	return false
}

// BusinessPhase ITR 商业周期阶段
type BusinessPhase string

const (
	PhaseA BusinessPhase = "A" // Recovery
	PhaseB BusinessPhase = "B" // Accelerating Growth
	PhaseC BusinessPhase = "C" // Slowing Growth
	PhaseD BusinessPhase = "D" // Recession
)

// Phases 阶段计数平局时按此顺序取第一个
var Phases = []BusinessPhase{PhaseA, PhaseB, PhaseC, PhaseD}

// ParseBusinessPhase 解析 "A"、"phase b"、"Phase C: Slowing Growth" 等写法
func ParseBusinessPhase(s string) (BusinessPhase, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "PHASE")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	p := BusinessPhase(s[:1])
	for _, known := range Phases {
		if p == known && (len(s) == 1 || !isLetter(s[1])) {
			return p, true
		}
	}
	return "", false
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// DominantTrend 板块主导趋势
type DominantTrend string

const (
	TrendRecovering   DominantTrend = "recovering"
	TrendAccelerating DominantTrend = "accelerating"
	TrendStable       DominantTrend = "stable"
	TrendSlowing      DominantTrend = "slowing"
	TrendDeclining    DominantTrend = "declining"
)

// TrendForPhase 阶段到趋势的固定映射
func TrendForPhase(p BusinessPhase) DominantTrend {
	switch p {
	case PhaseA:
		return TrendRecovering
	case PhaseB:
		return TrendAccelerating
	case PhaseC:
		return TrendSlowing
	case PhaseD:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Score 趋势对应的 1-5 情绪分
func (t DominantTrend) Score() int {
	switch t {
	case TrendRecovering:
		return 4
	case TrendAccelerating:
		return 5
	case TrendSlowing:
		return 2
	case TrendDeclining:
		return 1
	default:
		return 3
	}
}

// Growing reports recovering or accelerating trends.
func (t DominantTrend) Growing() bool {
	return t == TrendRecovering || t == TrendAccelerating
}

// Contracting reports slowing or declining trends.
func (t DominantTrend) Contracting() bool {
	return t == TrendSlowing || t == TrendDeclining
}

// TrendDirection 图表指示方向
type TrendDirection string

const (
	DirectionRising  TrendDirection = "rising"
	DirectionFalling TrendDirection = "falling"
	DirectionStable  TrendDirection = "stable"
)

// ParseTrendDirection 仅接受三个枚举值（忽略大小写）
func ParseTrendDirection(s string) (TrendDirection, bool) {
	switch d := TrendDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case DirectionRising, DirectionFalling, DirectionStable:
		return d, true
	}
	return "", false
}

// Confidence 置信度
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// SentimentLabel 情绪标签
type SentimentLabel string

const (
	LabelStronglyBearish SentimentLabel = "Strongly Bearish"
	LabelBearish         SentimentLabel = "Bearish"
	LabelNeutral         SentimentLabel = "Neutral"
	LabelBullish         SentimentLabel = "Bullish"
	LabelStronglyBullish SentimentLabel = "Strongly Bullish"
)

var scoreLabels = map[int]SentimentLabel{
	1: LabelStronglyBearish,
	2: LabelBearish,
	3: LabelNeutral,
	4: LabelBullish,
	5: LabelStronglyBullish,
}

// LabelForScore 分数到标签的固定映射
func LabelForScore(score int) (SentimentLabel, error) {
	label, ok := scoreLabels[score]
	if !ok {
		return "", fmt.Errorf("sentiment score %d out of range [1,5]", score)
	}
	return label, nil
}

// Impact 影响因素的方向
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// OverallDirection 跨板块整体方向
type OverallDirection string

const (
	DirectionExpanding   OverallDirection = "expanding"
	DirectionContracting OverallDirection = "contracting"
	DirectionMixed       OverallDirection = "mixed"
)
