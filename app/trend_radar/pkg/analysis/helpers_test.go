package analysis

import (
	"strings"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/flow"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/llm/llmtest"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

func chartBlock(page int, phase, direction string) model.ContentBlock {
	return model.ContentBlock{
		BlockType:      model.BlockChart,
		PageNumber:     page,
		Interpretation: "chart reading",
		Content:        model.BlockContent{Chart: &model.ChartContent{ChartType: model.ChartRateOfChange}},
		Metadata:       model.BlockMetadata{CurrentPhase: phase, TrendDirection: direction},
	}
}

func seriesPage(number int, name string, sector model.Sector, phases ...string) model.PageFlow {
	blocks := []model.ContentBlock{}
	for _, p := range phases {
		blocks = append(blocks, chartBlock(number, p, "rising"))
	}
	return model.PageFlow{
		PageNumber:  number,
		PageType:    model.PageSeries,
		SeriesName:  name,
		Sector:      sector,
		Blocks:      blocks,
		PageSummary: "Summary of " + name,
		KeyInsights: []string{name + " insight"},
	}
}

// fullDocument 六页、四个板块都有系列，结构检查通过
func fullDocument() *model.Document {
	pages := []model.PageFlow{
		{PageNumber: 1, PageType: model.PageExecutiveSummary, PageSummary: "Executive overview.",
			Blocks: []model.ContentBlock{}, KeyInsights: []string{}, RawText: "Executive Summary October 2025"},
		seriesPage(2, "US Industrial Production", model.SectorCore, "B", "B"),
		seriesPage(3, "US ISM PMI", model.SectorCore, "B", "A"),
		seriesPage(4, "US Stock Prices", model.SectorFinancial, "C"),
		seriesPage(5, "US Single-Unit Housing Starts", model.SectorConstruction, "D", "D"),
		seriesPage(6, "US Metalworking Machinery", model.SectorManufacturing, "A"),
	}
	doc := flow.Assemble(flow.SourceMeta{Filename: "ITR Trends October 2025.pdf", TotalPages: len(pages)}, pages)
	return &doc
}

func scriptedLLM() *llmtest.Fake {
	return &llmtest.Fake{CompleteFunc: func(_, user string) (string, error) {
		switch {
		case strings.HasPrefix(user, "Identify up to 7 key themes"):
			return `[{"theme_name":"Manufacturing rebound","significance_score":15,"frequency":3,"affected_sectors":["Manufacturing"]},` +
				`{"theme_name":"","significance_score":4}]`, nil
		case strings.HasPrefix(user, "Based on the"):
			return "```json\n[\"Invest ahead of the upturn\", \" \", \"Watch rates\"]\n```", nil
		default:
			return strings.Repeat("The economy continues to move through the business cycle. ", 3), nil
		}
	}}
}
