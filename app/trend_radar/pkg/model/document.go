package model

import (
	"sort"
	"time"
)

// DocumentMetadata 文档级统计
type DocumentMetadata struct {
	TotalPages       int      `json:"total_pages"`
	SeriesPagesCount int      `json:"series_pages_count"`
	TotalCharts      int      `json:"total_charts"`
	SectorsCovered   []Sector `json:"sectors_covered"`
}

// SeriesEntry 系列索引条目
type SeriesEntry struct {
	PageNumber int      `json:"page_number"`
	Sector     Sector   `json:"sector,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Insights   []string `json:"insights"`
}

// AggregatedInsights 全文洞察汇总
type AggregatedInsights struct {
	TotalInsights int                 `json:"total_insights"`
	BySector      map[Sector][]string `json:"by_sector"`
	TopInsights   []string            `json:"top_insights"`
}

// Document 一份报告的完整内容流，可选携带分析结果
type Document struct {
	ReportID            string                    `json:"report_id"`
	PDFFilename         string                    `json:"pdf_filename"`
	ReportPeriod        string                    `json:"report_period"`
	ExtractionTimestamp time.Time                 `json:"extraction_timestamp"`
	Metadata            DocumentMetadata          `json:"metadata"`
	DocumentFlow        []PageFlow                `json:"document_flow"`
	SeriesIndex         map[string]SeriesEntry    `json:"series_index"`
	AggregatedInsights  AggregatedInsights        `json:"aggregated_insights"`
	OverallAnalysis     *OverallAnalysis          `json:"overall_analysis,omitempty"`
	SectorAnalyses      map[Sector]SectorAnalysis `json:"sector_analyses"`
	AnalysisMetadata    *AnalysisMetadata         `json:"analysis_metadata,omitempty"`
}

// SeriesRef 带名称的系列索引条目，便于有序遍历
type SeriesRef struct {
	Name string
	SeriesEntry
}

// OrderedSeries 按页码（同页按名称）排序的系列列表
func (d *Document) OrderedSeries() []SeriesRef {
	refs := make([]SeriesRef, 0, len(d.SeriesIndex))
	for name, entry := range d.SeriesIndex {
		refs = append(refs, SeriesRef{Name: name, SeriesEntry: entry})
	}
	sortSeriesRefs(refs)
	return refs
}

func sortSeriesRefs(refs []SeriesRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].PageNumber != refs[j].PageNumber {
			return refs[i].PageNumber < refs[j].PageNumber
		}
		return refs[i].Name < refs[j].Name
	})
}

// Charts 返回全文所有图表块
func (d *Document) Charts() []ContentBlock {
	var charts []ContentBlock
	for _, page := range d.DocumentFlow {
		for _, b := range page.Blocks {
			if b.BlockType == BlockChart {
				charts = append(charts, b)
			}
		}
	}
	return charts
}

// ReportSummary 报告列表摘要
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

// Summarize 生成列表摘要
func (d *Document) Summarize(updatedAt time.Time) ReportSummary {
	return ReportSummary{
		ReportID:     d.ReportID,
		PDFFilename:  d.PDFFilename,
		ReportPeriod: d.ReportPeriod,
		TotalPages:   d.Metadata.TotalPages,
		TotalCharts:  d.Metadata.TotalCharts,
		SeriesCount:  len(d.SeriesIndex),
		HasAnalysis:  d.OverallAnalysis != nil,
		UpdatedAt:    updatedAt,
	}
}
