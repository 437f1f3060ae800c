package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const (
	// AnalysisVersion 首次生成的分析版本号
	AnalysisVersion = "1.0"
	// GeneratorVersion 分析生成器版本
	GeneratorVersion = "1.2.0"
	// UnknownModel 未配置 LLM 时记录的模型名
	UnknownModel = "unknown"
)

// SectorCorrelation 板块间的静态关联
type SectorCorrelation struct {
	RelatedSector Sector `json:"related_sector" validate:"required"`
	Relationship  string `json:"relationship" validate:"oneof=leading lagging"`
	LagMonths     int    `json:"lag_months" validate:"gte=0"`
	Strength      string `json:"strength" validate:"oneof=strong moderate weak"`
	Description   string `json:"description"`
}

// SectorAnalysis 单板块分析
type SectorAnalysis struct {
	SectorName        Sector                `json:"sector_name" validate:"required"`
	Summary           string                `json:"summary" validate:"min=50,max=2000"`
	SeriesCount       int                   `json:"series_count" validate:"gte=0"`
	PhaseDistribution map[BusinessPhase]int `json:"phase_distribution" validate:"len=4,dive,gte=0"`
	DominantTrend     DominantTrend         `json:"dominant_trend" validate:"oneof=recovering accelerating stable slowing declining"`
	LeadingIndicators []string              `json:"leading_indicators" validate:"max=3"`
	BusinessPhase     BusinessPhase         `json:"business_phase" validate:"oneof=A B C D"`
	Correlations      []SectorCorrelation   `json:"correlations" validate:"dive"`
	KeyInsights       []string              `json:"key_insights" validate:"max=5"`
	SourcePages       []int                 `json:"source_pages"`
}

// NewSectorAnalysis 校验后返回
func NewSectorAnalysis(a SectorAnalysis) (SectorAnalysis, error) {
	if err := a.Validate(); err != nil {
		return SectorAnalysis{}, err
	}
	return a, nil
}

// Validate 检查板块分析的构造不变量
func (a SectorAnalysis) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("sector analysis %q: %w", a.SectorName, err)
	}
	for _, p := range Phases {
		if _, ok := a.PhaseDistribution[p]; !ok {
			return fmt.Errorf("sector analysis %q: phase distribution missing phase %s", a.SectorName, p)
		}
	}
	return nil
}

// UnmarshalJSON 反序列化后重新校验
func (a *SectorAnalysis) UnmarshalJSON(data []byte) error {
	type alias SectorAnalysis
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := SectorAnalysis(raw)
	if err := v.Validate(); err != nil {
		return err
	}
	*a = v
	return nil
}

// Theme 全文主题
type Theme struct {
	ThemeName            string   `json:"theme_name" validate:"required"`
	SignificanceScore    float64  `json:"significance_score" validate:"gte=1,lte=10"`
	Frequency            int      `json:"frequency" validate:"gte=1"`
	Description          string   `json:"description"`
	AffectedSectors      []string `json:"affected_sectors"`
	SourcePages          []int    `json:"source_pages"`
	BusinessImplications string   `json:"business_implications"`
}

// NewTheme 校验后返回
func NewTheme(t Theme) (Theme, error) {
	if err := validate.Struct(t); err != nil {
		return Theme{}, fmt.Errorf("theme %q: %w", t.ThemeName, err)
	}
	return t, nil
}

// CrossSectorTrends 跨板块趋势
type CrossSectorTrends struct {
	OverallDirection   OverallDirection    `json:"overall_direction" validate:"oneof=expanding contracting mixed"`
	SectorsInGrowth    []Sector            `json:"sectors_in_growth"`
	SectorsInDecline   []Sector            `json:"sectors_in_decline"`
	SectorCorrelations []SectorCorrelation `json:"sector_correlations" validate:"dive"`
	TrendSummary       string              `json:"trend_summary"`
}

// ContributingFactor 情绪分的影响因素
type ContributingFactor struct {
	FactorName  string  `json:"factor_name" validate:"required"`
	Impact      Impact  `json:"impact" validate:"oneof=positive negative neutral"`
	Weight      float64 `json:"weight" validate:"gte=0,lte=1"`
	Description string  `json:"description"`
}

// IndicatorSignal 单个指标的方向信号
type IndicatorSignal struct {
	IndicatorName string         `json:"indicator_name" validate:"required"`
	Sector        Sector         `json:"sector,omitempty"`
	Direction     TrendDirection `json:"direction" validate:"oneof=rising falling stable"`
	Phase         BusinessPhase  `json:"phase,omitempty"`
	SourcePage    int            `json:"source_page" validate:"gte=1"`
}

// SentimentScore 1-5 综合情绪评分
type SentimentScore struct {
	Score               int                  `json:"score" validate:"min=1,max=5"`
	Label               SentimentLabel       `json:"label" validate:"required"`
	Confidence          Confidence           `json:"confidence" validate:"oneof=high medium low"`
	ContributingFactors []ContributingFactor `json:"contributing_factors" validate:"dive"`
	SectorWeights       map[Sector]float64   `json:"sector_weights"`
	IndicatorSignals    []IndicatorSignal    `json:"indicator_signals" validate:"dive"`
	Rationale           string               `json:"rationale"`
}

// NewSentimentScore 构造时强制不变量：标签必须与分数对应，权重和在 [0.99, 1.01]
func NewSentimentScore(s SentimentScore) (SentimentScore, error) {
	if err := s.Validate(); err != nil {
		return SentimentScore{}, err
	}
	return s, nil
}

// Validate 检查情绪分的构造不变量
func (s SentimentScore) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("sentiment score: %w", err)
	}
	want, err := LabelForScore(s.Score)
	if err != nil {
		return err
	}
	if s.Label != want {
		return fmt.Errorf("sentiment label %q does not match score %d (want %q)", s.Label, s.Score, want)
	}
	if len(s.SectorWeights) > 0 {
		var sum float64
		for _, w := range s.SectorWeights {
			sum += w
		}
		if sum < 0.99 || sum > 1.01 {
			return fmt.Errorf("sector weights sum to %.4f, want 1.0", sum)
		}
	}
	return nil
}

// UnmarshalJSON 反序列化后重新校验
func (s *SentimentScore) UnmarshalJSON(data []byte) error {
	type alias SentimentScore
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := SentimentScore(raw)
	if err := v.Validate(); err != nil {
		return err
	}
	*s = v
	return nil
}

// OverallAnalysis 全文综合分析
type OverallAnalysis struct {
	ExecutiveSummary  string            `json:"executive_summary" validate:"min=100,max=5000"`
	KeyThemes         []Theme           `json:"key_themes" validate:"max=7,dive"`
	CrossSectorTrends CrossSectorTrends `json:"cross_sector_trends"`
	Recommendations   []string          `json:"recommendations"`
	SentimentScore    SentimentScore    `json:"sentiment_score"`
}

// NewOverallAnalysis 校验后返回
func NewOverallAnalysis(o OverallAnalysis) (OverallAnalysis, error) {
	if err := o.Validate(); err != nil {
		return OverallAnalysis{}, err
	}
	return o, nil
}

// Validate 检查综合分析的构造不变量
func (o OverallAnalysis) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("overall analysis: %w", err)
	}
	return o.SentimentScore.Validate()
}

// UnmarshalJSON 反序列化后重新校验
func (o *OverallAnalysis) UnmarshalJSON(data []byte) error {
	type alias OverallAnalysis
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := OverallAnalysis(raw)
	if err := v.Validate(); err != nil {
		return err
	}
	*o = v
	return nil
}

// AnalysisMetadata 一次分析运行的元数据
type AnalysisMetadata struct {
	Version                string    `json:"version"`
	GeneratedAt            time.Time `json:"generated_at"`
	GeneratorVersion       string    `json:"generator_version"`
	LLMModel               string    `json:"llm_model"`
	ProcessingTimeSeconds  float64   `json:"processing_time_seconds"`
	RegeneratedFromVersion string    `json:"regenerated_from_version,omitempty"`
	RunID                  string    `json:"run_id,omitempty"`
}

// AnalysisExport 对外导出的分析结构
type AnalysisExport struct {
	ReportID         string                    `json:"report_id"`
	PDFFilename      string                    `json:"pdf_filename"`
	ReportPeriod     string                    `json:"report_period"`
	OverallAnalysis  *OverallAnalysis          `json:"overall_analysis"`
	SectorAnalyses   map[Sector]SectorAnalysis `json:"sector_analyses"`
	AnalysisMetadata *AnalysisMetadata         `json:"analysis_metadata"`
}

// Round2 保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
