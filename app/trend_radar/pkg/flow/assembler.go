package flow

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

const (
	periodScanPages     = 3
	sectorInsightsLimit = 5
	topInsightsLimit    = 10
)

var reportPeriodPattern = regexp.MustCompile(`(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})`)

// SourceMeta 抽取阶段的源文件信息
type SourceMeta struct {
	Filename    string
	TotalPages  int
	ExtractedAt time.Time
}

// ReportID 文件名去扩展名，空格替换为下划线并转小写
func ReportID(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return strings.ToLower(strings.ReplaceAll(stem, " ", "_"))
}

// ReportPeriod 前三页中第一个 "Month YYYY"
func ReportPeriod(pages []model.PageFlow) string {
	for i, p := range pages {
		if i >= periodScanPages {
			break
		}
		if m := reportPeriodPattern.FindStringSubmatch(p.RawText); m != nil {
			return m[1] + " " + m[2]
		}
	}
	return ""
}

// Assemble 把各页 PageFlow 汇总为 Document
func Assemble(meta SourceMeta, pages []model.PageFlow) model.Document {
	if pages == nil {
		pages = []model.PageFlow{}
	}
	totalPages := meta.TotalPages
	if totalPages == 0 {
		totalPages = len(pages)
	}

	doc := model.Document{
		ReportID:            ReportID(meta.Filename),
		PDFFilename:         filepath.Base(meta.Filename),
		ReportPeriod:        ReportPeriod(pages),
		ExtractionTimestamp: meta.ExtractedAt,
		DocumentFlow:        pages,
		SeriesIndex:         make(map[string]model.SeriesEntry),
	}

	covered := make(map[model.Sector]bool)
	for _, p := range pages {
		doc.Metadata.TotalCharts += p.ChartCount()
		if p.PageType == model.PageSeries {
			doc.Metadata.SeriesPagesCount++
			if p.Sector != "" {
				covered[p.Sector] = true
			}
		}
		if p.SeriesName == "" {
			continue
		}
		if _, dup := doc.SeriesIndex[p.SeriesName]; dup {
			continue
		}
		insights := make([]string, len(p.KeyInsights))
		copy(insights, p.KeyInsights)
		doc.SeriesIndex[p.SeriesName] = model.SeriesEntry{
			PageNumber: p.PageNumber,
			Sector:     p.Sector,
			Summary:    p.PageSummary,
			Insights:   insights,
		}
	}

	doc.Metadata.TotalPages = totalPages
	doc.Metadata.SectorsCovered = []model.Sector{}
	for _, s := range model.Sectors {
		if covered[s] {
			doc.Metadata.SectorsCovered = append(doc.Metadata.SectorsCovered, s)
		}
	}
	doc.AggregatedInsights = aggregateInsights(pages)
	return doc
}

func aggregateInsights(pages []model.PageFlow) model.AggregatedInsights {
	agg := model.AggregatedInsights{
		BySector:    make(map[model.Sector][]string),
		TopInsights: []string{},
	}
	var all []string
	for _, p := range pages {
		if p.SeriesName == "" {
			continue
		}
		for _, insight := range p.KeyInsights {
			all = append(all, insight)
			if p.Sector != "" && len(agg.BySector[p.Sector]) < sectorInsightsLimit {
				agg.BySector[p.Sector] = append(agg.BySector[p.Sector], insight)
			}
		}
	}
	agg.TotalInsights = len(all)
	if len(all) > topInsightsLimit {
		all = all[:topInsightsLimit]
	}
	agg.TopInsights = append(agg.TopInsights, all...)
	return agg
}
