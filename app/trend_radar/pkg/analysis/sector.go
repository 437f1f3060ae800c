package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/catalog"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

const (
	maxLeadingIndicators = 3
	maxSectorInsights    = 5
	sectorContextLimit   = 3000
)

// pageSummary 带回溯信息的页面摘要
type pageSummary struct {
	Page    int
	Series  string
	Sector  model.Sector
	Summary string
}

// chartInsight 带回溯信息的图表解读
type chartInsight struct {
	Page           int
	Series         string
	Sector         model.Sector
	ChartType      model.ChartType
	Interpretation string
	TrendDirection string
	CurrentPhase   string
}

// collect 汇总页面摘要与图表解读
func collect(doc *model.Document) ([]pageSummary, []chartInsight) {
	var summaries []pageSummary
	var charts []chartInsight
	for _, p := range doc.DocumentFlow {
		if p.PageSummary != "" {
			summaries = append(summaries, pageSummary{Page: p.PageNumber, Series: p.SeriesName, Sector: p.Sector, Summary: p.PageSummary})
		}
		for _, b := range p.Blocks {
			if b.BlockType != model.BlockChart || b.Interpretation == "" {
				continue
			}
			charts = append(charts, chartInsight{
				Page:           p.PageNumber,
				Series:         p.SeriesName,
				Sector:         p.Sector,
				ChartType:      b.ChartType(),
				Interpretation: b.Interpretation,
				TrendDirection: b.Metadata.TrendDirection,
				CurrentPhase:   b.Metadata.CurrentPhase,
			})
		}
	}
	return summaries, charts
}

// GroupSeries 按板块分组系列索引；无板块的条目丢弃
func GroupSeries(doc *model.Document) map[model.Sector][]model.SeriesRef {
	groups := make(map[model.Sector][]model.SeriesRef)
	for _, ref := range doc.OrderedSeries() {
		if !ref.Sector.Valid() {
			continue
		}
		groups[ref.Sector] = append(groups[ref.Sector], ref)
	}
	return groups
}

// PhaseDistribution 统计板块各页图表的 current_phase；全为 0 时按系列数平均分配
func PhaseDistribution(doc *model.Document, sector model.Sector, seriesCount int) map[model.BusinessPhase]int {
	dist := make(map[model.BusinessPhase]int, len(model.Phases))
	for _, p := range model.Phases {
		dist[p] = 0
	}

	total := 0
	for _, page := range doc.DocumentFlow {
		if page.Sector != sector {
			continue
		}
		for _, b := range page.Blocks {
			if b.BlockType != model.BlockChart {
				continue
			}
			if phase, ok := model.ParseBusinessPhase(b.Metadata.CurrentPhase); ok {
				dist[phase]++
				total++
			}
		}
	}

	if total == 0 {
		each := seriesCount / len(model.Phases)
		for _, p := range model.Phases {
			dist[p] = each
		}
	}
	return dist
}

// DominantTrend 计数最高的阶段；并列取 A、B、C、D 中靠前者；全为 0 时为 stable
func DominantTrend(dist map[model.BusinessPhase]int) (model.DominantTrend, model.BusinessPhase) {
	total := 0
	for _, n := range dist {
		total += n
	}
	if total == 0 {
		return model.TrendStable, model.PhaseC
	}

	best := model.PhaseA
	for _, p := range model.Phases {
		if dist[p] > dist[best] {
			best = p
		}
	}
	return model.TrendForPhase(best), best
}

// LeadingIndicators 板块系列与已知领先指标的交集，最多 3 个；交集为空时取前 3 个系列
func LeadingIndicators(sector model.Sector, seriesNames []string) []string {
	known := make(map[string]bool)
	for _, name := range catalog.LeadingIndicators(sector) {
		known[strings.ToLower(name)] = true
	}

	out := []string{}
	for _, name := range seriesNames {
		if known[strings.ToLower(name)] {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		out = append(out, seriesNames...)
	}
	if len(out) > maxLeadingIndicators {
		out = out[:maxLeadingIndicators]
	}
	return out
}

func sectorInsights(refs []model.SeriesRef) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, ref := range refs {
		for _, insight := range ref.Insights {
			if len(out) == maxSectorInsights {
				return out
			}
			if !seen[insight] {
				seen[insight] = true
				out = append(out, insight)
			}
		}
	}
	return out
}

func sourcePages(refs []model.SeriesRef) []int {
	pages := make([]int, 0, len(refs))
	for _, ref := range refs {
		pages = append(pages, ref.PageNumber)
	}
	sort.Ints(pages)
	return pages
}

func seriesNames(refs []model.SeriesRef) []string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names
}

func formatDistribution(dist map[model.BusinessPhase]int) string {
	parts := make([]string, 0, len(model.Phases))
	for _, p := range model.Phases {
		parts = append(parts, fmt.Sprintf("%s=%d", p, dist[p]))
	}
	return strings.Join(parts, ", ")
}

// analyzeSector 构建单板块分析；摘要失败计入 rc
func (g *Generator) analyzeSector(ctx context.Context, rc RunContext, doc *model.Document, sector model.Sector,
	refs []model.SeriesRef, summaries []pageSummary) (model.SectorAnalysis, RunContext, error) {
	names := seriesNames(refs)
	dist := PhaseDistribution(doc, sector, len(refs))
	trend, phase := DominantTrend(dist)

	var summary string
	if g.client == nil {
		summary = FallbackSectorSummary(sector, names)
	} else {
		var pageLines []string
		for _, s := range summaries {
			if s.Sector == sector {
				pageLines = append(pageLines, fmt.Sprintf("Page %d (%s): %s", s.Page, s.Series, s.Summary))
			}
		}
		prompt := fmt.Sprintf(sectorSummaryPrompt, sector.Title(), periodOf(doc), strings.Join(names, ", "),
			formatDistribution(dist), trend, truncate(strings.Join(pageLines, "\n"), sectorContextLimit))
		out, err := g.client.Complete(ctx, analystSystemPrompt, prompt)
		if err != nil || strings.TrimSpace(out) == "" {
			logger.ForRun(rc.RunID, doc.ReportID).Warnf("%s 板块摘要生成失败，使用兜底摘要: %v", sector, err)
			rc = rc.withFailure()
			summary = FallbackSectorSummary(sector, names)
		} else {
			summary = out
		}
	}

	analysis, err := model.NewSectorAnalysis(model.SectorAnalysis{
		SectorName:        sector,
		Summary:           EnsureSectorSummary(summary, sector, len(refs)),
		SeriesCount:       len(refs),
		PhaseDistribution: dist,
		DominantTrend:     trend,
		LeadingIndicators: LeadingIndicators(sector, names),
		BusinessPhase:     phase,
		Correlations:      catalog.Correlations(sector),
		KeyInsights:       sectorInsights(refs),
		SourcePages:       sourcePages(refs),
	})
	return analysis, rc, err
}
