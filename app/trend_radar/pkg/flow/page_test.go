package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/llm/llmtest"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/pdfsource"
)

func seriesPage(number int) pdfsource.Page {
	groups := []pdfsource.SpanGroup{
		group("US Industrial Production", "Helvetica-Bold", 16, 50),
		group("HIGHLIGHTS", "Helvetica-Bold", 10, 100),
		group("• Output rose • Orders up • Margins thin • Fourth item", "Helvetica", 10, 120),
	}
	images := []pdfsource.Image{
		{Xref: 1, Width: 400, Height: 300, Data: []byte{0x89}, MimeType: "image/png"},
		{Xref: 2, Width: 400, Height: 300, Data: []byte{0x89}, MimeType: "image/png"},
		{Xref: 3, Width: 400, Height: 300, Data: []byte{0x89}, MimeType: "image/png"},
	}
	return pdfsource.Page{
		Number: number,
		Text:   pdfsource.PageText(groups) + "\nFORECAST\n2025:\n12/12 3.5%\n",
		Groups: groups,
		Images: images,
	}
}

func newTestBuilder(client *llmtest.Fake) *Builder {
	if client == nil {
		return NewBuilder(NewClassifier(&Sequencer{}, 0), NewInterpreter(nil), nil)
	}
	return NewBuilder(NewClassifier(&Sequencer{}, 0), NewInterpreter(client), client)
}

func TestIdentifySubject(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		page   int
		want   model.PageType
		series string
	}{
		{"toc", "Table of Contents\nUS Industrial Production", 2, model.PageTableOfContents, ""},
		{"exec summary early", "Executive Summary\nUS ISM PMI", 3, model.PageExecutiveSummary, ""},
		{"exec summary late is not a marker", "Executive Summary\nUS ISM PMI", 9, model.PageSeries, "US ISM PMI"},
		{"phase key", "PHASE KEY\nUS ISM PMI", 4, model.PageAtAGlance, ""},
		{"at a glance", "At-a-Glance", 4, model.PageAtAGlance, ""},
		{"series", "us industrial production rose", 12, model.PageSeries, "us industrial production"},
		{"other", "Disclaimer", 40, model.PageOther, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IdentifySubject(tt.text, tt.page)
			assert.Equal(t, tt.want, got.PageType)
			assert.Equal(t, tt.series, got.SeriesName)
			if tt.series == "" {
				assert.Empty(t, got.Sector)
			}
		})
	}
}

func TestBuild_WithoutLLM(t *testing.T) {
	flow := newTestBuilder(nil).Build(context.Background(), seriesPage(12))

	assert.Equal(t, 12, flow.PageNumber)
	assert.Equal(t, model.PageSeries, flow.PageType)
	assert.Equal(t, "US Industrial Production", flow.SeriesName)
	assert.Equal(t, model.SectorCore, flow.Sector)

	types := make([]model.BlockType, 0, len(flow.Blocks))
	for _, b := range flow.Blocks {
		types = append(types, b.BlockType)
	}
	assert.Equal(t, []model.BlockType{
		model.BlockChart, model.BlockChart, model.BlockChart, model.BlockForecastTable,
		model.BlockHeading, model.BlockSectionHeading, model.BlockBulletList,
	}, types)

	chart := flow.Blocks[0]
	assert.Equal(t, model.ChartRateOfChange, chart.ChartType())
	assert.Equal(t, "rate_of_change for US Industrial Production", chart.Summary)
	assert.True(t, strings.HasPrefix(chart.Interpretation, "Rate-of-Change chart"))
	require.NotNil(t, chart.Metadata.VisionInterpretation)
	assert.Equal(t, model.ConfidenceLow, chart.Metadata.VisionInterpretation.Confidence)

	assert.Equal(t, []string{"Output rose", "Orders up", "Margins thin"}, flow.KeyInsights)
	assert.Equal(t, "Economic series page for US Industrial Production in the core sector.", flow.PageSummary)
}

func TestBuild_OrderingIsDeterministic(t *testing.T) {
	a := newTestBuilder(nil).Build(context.Background(), seriesPage(12))
	b := newTestBuilder(nil).Build(context.Background(), seriesPage(12))
	assert.Equal(t, a.Blocks, b.Blocks)
}

func TestBuild_WithLLM(t *testing.T) {
	client := &llmtest.Fake{
		VisionFunc: func(_ []byte, _ string, _ string) (string, error) {
			return "```json\n{\"description\":\"Rates are climbing.\",\"trend_direction\":\"Rising\",\"current_phase\":\"Phase B\",\"key_patterns\":[\"higher highs\"],\"confidence\":\"medium\"}\n```", nil
		},
		CompleteFunc: func(_, _ string) (string, error) { return "  Production is expanding.  ", nil },
	}
	flow := newTestBuilder(client).Build(context.Background(), seriesPage(12))

	chart := flow.Blocks[0]
	assert.Equal(t, "Rates are climbing.", chart.Interpretation)
	assert.Equal(t, "rising", chart.Metadata.TrendDirection)
	assert.Equal(t, "B", chart.Metadata.CurrentPhase)
	assert.Equal(t, []string{"higher highs"}, chart.Metadata.KeyPatterns)
	assert.Equal(t, model.ConfidenceMedium, chart.Metadata.VisionInterpretation.Confidence)
	assert.Equal(t, "Production is expanding.", flow.PageSummary)
	assert.Equal(t, 3, client.VisionHits)
}

func TestInterpret_FallbackChain(t *testing.T) {
	block := model.ContentBlock{
		BlockType:  model.BlockChart,
		PageNumber: 4,
		Content: model.BlockContent{Chart: &model.ChartContent{
			ChartType: model.ChartDataTrend, ImageData: []byte{1}, MimeType: "image/png",
		}},
	}

	textOnly := &llmtest.Fake{
		VisionFunc:   func([]byte, string, string) (string, error) { return "not json", nil },
		CompleteFunc: func(_, _ string) (string, error) { return "Values trend upward.", nil },
	}
	got := NewInterpreter(textOnly).Interpret(context.Background(), block, "page text", "US ISM PMI")
	assert.Equal(t, "Values trend upward.", got.Description)
	assert.Equal(t, model.ConfidenceMedium, got.Confidence)

	broken := &llmtest.Fake{
		VisionFunc:   func([]byte, string, string) (string, error) { return "", errors.New("boom") },
		CompleteFunc: func(_, _ string) (string, error) { return "", errors.New("boom") },
	}
	got = NewInterpreter(broken).Interpret(context.Background(), block, "page text", "US ISM PMI")
	assert.Equal(t, model.ConfidenceLow, got.Confidence)
	assert.Contains(t, got.Description, "Data Trend chart showing the actual values of US ISM PMI")

	block.Content.Chart.ImageData = nil
	noImage := llmtest.Replying("From the page text.")
	got = NewInterpreter(noImage).Interpret(context.Background(), block, "page text", "")
	assert.Equal(t, "From the page text.", got.Description)
	assert.Equal(t, 0, noImage.VisionHits)
}

func TestTemplateInterpretation(t *testing.T) {
	assert.Contains(t, TemplateInterpretation(model.ChartOverview, "").Description, "long-term perspective on economic data")
	assert.Equal(t, "Chart displaying US ISM PMI economic data.", TemplateInterpretation("chart_4", "US ISM PMI").Description)
}

func TestFallbackPageSummary(t *testing.T) {
	assert.Equal(t, "Executive Summary providing an overview of current economic conditions and outlook.",
		FallbackPageSummary(model.PageFlow{PageType: model.PageExecutiveSummary}))
	assert.Equal(t, "At-a-Glance summary showing business cycle phases for multiple economic indicators.",
		FallbackPageSummary(model.PageFlow{PageType: model.PageAtAGlance}))
	assert.Equal(t, "Page 30 content.", FallbackPageSummary(model.PageFlow{PageNumber: 30, PageType: model.PageOther}))
}

func TestKeyInsights_CapAndDedup(t *testing.T) {
	blocks := []model.ContentBlock{
		{BlockType: model.BlockBulletList, Content: model.TextContent("• a • b • c • d")},
		{BlockType: model.BlockSectionHeading, Content: model.TextContent("HIGHLIGHTS")},
		{BlockType: model.BlockText, Content: model.TextContent("a")},
		{BlockType: model.BlockBulletList, Content: model.TextContent("- e\n- f\n- g")},
	}
	assert.Equal(t, []string{"a", "b", "c", "e", "f"}, KeyInsights(blocks))
	assert.Equal(t, []string{}, KeyInsights(nil))
}
