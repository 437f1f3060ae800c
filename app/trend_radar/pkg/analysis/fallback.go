package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

const (
	sectorSummaryMin = 50
	sectorSummaryMax = 2000
	execSummaryMin   = 100
	execSummaryMax   = 5000
	fallbackSeries   = 3
)

const (
	// RecommendationNoLLM 未配置 LLM 时的建议
	RecommendationNoLLM = "Review individual sector analyses for detailed recommendations."
	// RecommendationFallback LLM 失败时的建议
	RecommendationFallback = "Monitor leading indicators for phase transition signals."

	execSummaryPadding   = " Please refer to individual sector analyses for detailed insights."
	sectorSummaryPadding = " See the series pages for details."
)

// FallbackSectorSummary 板块摘要兜底句
func FallbackSectorSummary(sector model.Sector, seriesNames []string) string {
	names := seriesNames
	if len(names) > fallbackSeries {
		names = names[:fallbackSeries]
	}
	return fmt.Sprintf("The %s sector analysis covers %d economic series including %s. Detailed analysis requires LLM processing.",
		sector, len(seriesNames), strings.Join(names, ", "))
}

// EnsureSectorSummary 不足 50 字符时前置说明，超过 2000 截断
func EnsureSectorSummary(summary string, sector model.Sector, seriesCount int) string {
	summary = strings.TrimSpace(summary)
	if utf8.RuneCountInString(summary) < sectorSummaryMin {
		summary = strings.TrimSpace(fmt.Sprintf("The %s sector contains %d economic series. ", sector, seriesCount) + summary)
	}
	for utf8.RuneCountInString(summary) < sectorSummaryMin {
		summary += sectorSummaryPadding
	}
	return truncate(summary, sectorSummaryMax)
}

// FallbackExecutiveSummary 执行摘要兜底段落
func FallbackExecutiveSummary(doc *model.Document, sectors []model.Sector) string {
	list := "various sectors"
	if len(sectors) > 0 {
		names := make([]string, len(sectors))
		for i, s := range sectors {
			names[i] = string(s)
		}
		list = strings.Join(names, ", ")
	}
	return fmt.Sprintf("This ITR Trends Report for %s covers economic analysis across %d sectors: %s. "+
		"The report contains %d pages with %d economic series analyzed.",
		periodOf(doc), len(sectors), list, doc.Metadata.TotalPages, len(doc.SeriesIndex))
}

// EnsureExecutiveSummary 不足 100 字符时追加提示，超过 5000 截断
func EnsureExecutiveSummary(summary string) string {
	summary = strings.TrimSpace(summary)
	for utf8.RuneCountInString(summary) < execSummaryMin {
		summary += execSummaryPadding
	}
	return truncate(summary, execSummaryMax)
}

func periodOf(doc *model.Document) string {
	if doc.ReportPeriod == "" {
		return "the current period"
	}
	return doc.ReportPeriod
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
