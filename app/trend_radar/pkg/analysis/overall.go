package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/llm"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

const (
	maxThemes             = 7
	maxRecommendations    = 5
	themeSourcePages      = 5
	overallContextLimit   = 6000
	defaultThemeName      = "Unknown Theme"
	defaultThemeScore     = 5.0
	defaultThemeFrequency = 1
)

type themeAnswer struct {
	ThemeName            string   `json:"theme_name"`
	SignificanceScore    *float64 `json:"significance_score"`
	Frequency            *float64 `json:"frequency"`
	Description          string   `json:"description"`
	AffectedSectors      []string `json:"affected_sectors"`
	BusinessImplications string   `json:"business_implications"`
}

// CrossSectorTrends 由各板块主导趋势确定性推导
func CrossSectorTrends(sectors map[model.Sector]model.SectorAnalysis) model.CrossSectorTrends {
	trends := model.CrossSectorTrends{
		SectorsInGrowth:    []model.Sector{},
		SectorsInDecline:   []model.Sector{},
		SectorCorrelations: []model.SectorCorrelation{},
	}
	for _, s := range model.Sectors {
		a, ok := sectors[s]
		if !ok {
			continue
		}
		switch {
		case a.DominantTrend.Growing():
			trends.SectorsInGrowth = append(trends.SectorsInGrowth, s)
		case a.DominantTrend.Contracting():
			trends.SectorsInDecline = append(trends.SectorsInDecline, s)
		}
		trends.SectorCorrelations = append(trends.SectorCorrelations, a.Correlations...)
	}

	growth, decline := len(trends.SectorsInGrowth), len(trends.SectorsInDecline)
	switch {
	case growth > decline:
		trends.OverallDirection = model.DirectionExpanding
	case decline > growth:
		trends.OverallDirection = model.DirectionContracting
	default:
		trends.OverallDirection = model.DirectionMixed
	}
	trends.TrendSummary = fmt.Sprintf("%d of %d sectors in growth, %d in decline; overall direction is %s.",
		growth, len(sectors), decline, trends.OverallDirection)
	return trends
}

// overall 执行摘要、主题、跨板块趋势、建议与情绪分
func (g *Generator) overall(ctx context.Context, rc RunContext, doc *model.Document,
	sectors map[model.Sector]model.SectorAnalysis, summaries []pageSummary, charts []chartInsight) (model.OverallAnalysis, RunContext, error) {
	log := logger.ForRun(rc.RunID, doc.ReportID)
	analyzed := analyzedSectors(sectors)
	sectorText := sectorContext(sectors)

	execSummary := FallbackExecutiveSummary(doc, analyzed)
	if g.client != nil {
		out, err := g.client.Complete(ctx, analystSystemPrompt, fmt.Sprintf(executiveSummaryPrompt, periodOf(doc),
			truncate(sectorText, overallContextLimit), truncate(summaryContext(summaries), overallContextLimit)))
		if err != nil || strings.TrimSpace(out) == "" {
			log.Warnf("执行摘要生成失败，使用兜底摘要: %v", err)
			rc = rc.withFailure()
		} else {
			execSummary = out
		}
	}
	execSummary = EnsureExecutiveSummary(execSummary)

	themes := []model.Theme{}
	if g.client != nil {
		var err error
		themes, err = g.themes(ctx, doc, sectorText, summaries, charts)
		if err != nil {
			log.Warnf("主题提取失败，主题列表置空: %v", err)
			rc = rc.withFailure()
			themes = []model.Theme{}
		}
	}

	recommendations := []string{RecommendationNoLLM}
	if g.client != nil {
		recs, err := g.recommendations(ctx, doc, execSummary, sectorText)
		if err != nil {
			log.Warnf("建议生成失败，使用兜底建议: %v", err)
			rc = rc.withFailure()
			recommendations = []string{RecommendationFallback}
		} else {
			recommendations = recs
		}
	}

	sentiment, err := scoreSentiment(rc, sectors, charts)
	if err != nil {
		return model.OverallAnalysis{}, rc, err
	}

	overall, err := model.NewOverallAnalysis(model.OverallAnalysis{
		ExecutiveSummary:  execSummary,
		KeyThemes:         themes,
		CrossSectorTrends: CrossSectorTrends(sectors),
		Recommendations:   recommendations,
		SentimentScore:    sentiment,
	})
	return overall, rc, err
}

func (g *Generator) themes(ctx context.Context, doc *model.Document, sectorText string,
	summaries []pageSummary, charts []chartInsight) ([]model.Theme, error) {
	var lines []string
	for _, c := range charts {
		lines = append(lines, fmt.Sprintf("Page %d %s (%s): %s", c.Page, c.ChartType, c.Series, c.Interpretation))
	}
	raw, err := g.client.Complete(ctx, analystSystemPrompt, fmt.Sprintf(themesPrompt, periodOf(doc),
		truncate(sectorText, overallContextLimit), truncate(strings.Join(lines, "\n"), overallContextLimit)))
	if err != nil {
		return nil, err
	}

	var answers []themeAnswer
	if err := llm.DecodeJSON("themes", raw, &answers); err != nil {
		return nil, err
	}

	pages := themePages(summaries)
	themes := []model.Theme{}
	for _, a := range answers {
		if len(themes) == maxThemes {
			break
		}
		theme, err := model.NewTheme(normalizeTheme(a, pages))
		if err != nil {
			logger.Log.Debugf("丢弃无效主题: %v", err)
			continue
		}
		themes = append(themes, theme)
	}
	return themes, nil
}

func normalizeTheme(a themeAnswer, pages []int) model.Theme {
	t := model.Theme{
		ThemeName:            strings.TrimSpace(a.ThemeName),
		SignificanceScore:    defaultThemeScore,
		Frequency:            defaultThemeFrequency,
		Description:          strings.TrimSpace(a.Description),
		AffectedSectors:      []string{},
		SourcePages:          pages,
		BusinessImplications: strings.TrimSpace(a.BusinessImplications),
	}
	if t.ThemeName == "" {
		t.ThemeName = defaultThemeName
	}
	if a.SignificanceScore != nil {
		t.SignificanceScore = math.Min(10, math.Max(1, *a.SignificanceScore))
	}
	if a.Frequency != nil && *a.Frequency >= 1 {
		t.Frequency = int(*a.Frequency)
	}
	for _, s := range a.AffectedSectors {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			t.AffectedSectors = append(t.AffectedSectors, s)
		}
	}
	return t
}

func (g *Generator) recommendations(ctx context.Context, doc *model.Document, execSummary, sectorText string) ([]string, error) {
	raw, err := g.client.Complete(ctx, analystSystemPrompt,
		fmt.Sprintf(recommendationsPrompt, periodOf(doc), execSummary, truncate(sectorText, overallContextLimit)))
	if err != nil {
		return nil, err
	}

	var answers []string
	if err := llm.DecodeJSON("recommendations", raw, &answers); err != nil {
		return nil, err
	}
	recs := []string{}
	for _, r := range answers {
		if r = strings.TrimSpace(r); r != "" && len(recs) < maxRecommendations {
			recs = append(recs, r)
		}
	}
	if len(recs) == 0 {
		return nil, &llm.CollaboratorError{Op: "recommendations", Kind: llm.KindEmpty, Err: fmt.Errorf("no recommendations")}
	}
	return recs, nil
}

func analyzedSectors(sectors map[model.Sector]model.SectorAnalysis) []model.Sector {
	out := []model.Sector{}
	for _, s := range model.Sectors {
		if _, ok := sectors[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func sectorContext(sectors map[model.Sector]model.SectorAnalysis) string {
	var parts []string
	for _, s := range model.Sectors {
		a, ok := sectors[s]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%d series, trend %s, phase %s): %s",
			s.Title(), a.SeriesCount, a.DominantTrend, a.BusinessPhase, a.Summary))
	}
	return strings.Join(parts, "\n\n")
}

func summaryContext(summaries []pageSummary) string {
	lines := make([]string, 0, len(summaries))
	for _, s := range summaries {
		lines = append(lines, fmt.Sprintf("Page %d: %s", s.Page, s.Summary))
	}
	return strings.Join(lines, "\n")
}

// themePages 摘要所在页码去重升序，取前 5 个
func themePages(summaries []pageSummary) []int {
	seen := make(map[int]bool)
	pages := []int{}
	for _, s := range summaries {
		if !seen[s.Page] {
			seen[s.Page] = true
			pages = append(pages, s.Page)
		}
	}
	sort.Ints(pages)
	if len(pages) > themeSourcePages {
		pages = pages[:themeSourcePages]
	}
	return pages
}
