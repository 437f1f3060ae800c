package domain

import (
	"time"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

// ReportSummary 报表摘要信息
type ReportSummary struct {
	ReportID     string    `json:"report_id"`
	PDFFilename  string    `json:"pdf_filename"`
	ReportPeriod string    `json:"report_period"`
	TotalPages   int       `json:"total_pages"`
	TotalCharts  int       `json:"total_charts"`
	SeriesCount  int       `json:"series_count"`
	HasAnalysis  bool      `json:"has_analysis"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ReportPage 分页结果
type ReportPage struct {
	Reports  []*ReportSummary `json:"reports"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// Chart 图表解读视图
type Chart struct {
	SequenceNumber       int      `json:"sequence_number"`
	PageNumber           int      `json:"page_number"`
	SeriesName           string   `json:"series_name,omitempty"`
	Sector               string   `json:"sector,omitempty"`
	ChartType            string   `json:"chart_type"`
	Interpretation       string   `json:"interpretation"`
	TrendDirection       string   `json:"trend_direction,omitempty"`
	CurrentPhase         string   `json:"current_phase,omitempty"`
	BusinessImplications string   `json:"business_implications,omitempty"`
	KeyPatterns          []string `json:"key_patterns,omitempty"`
}

// Series 经济序列视图
type Series struct {
	Name       string   `json:"name"`
	PageNumber int      `json:"page_number"`
	Sector     string   `json:"sector,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Insights   []string `json:"insights"`
}

// NewReportSummary 由存储层摘要转换
func NewReportSummary(s model.ReportSummary) *ReportSummary {
	return &ReportSummary{
		ReportID:     s.ReportID,
		PDFFilename:  s.PDFFilename,
		ReportPeriod: s.ReportPeriod,
		TotalPages:   s.TotalPages,
		TotalCharts:  s.TotalCharts,
		SeriesCount:  s.SeriesCount,
		HasAnalysis:  s.HasAnalysis,
		UpdatedAt:    s.UpdatedAt,
	}
}
