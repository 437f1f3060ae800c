package analysis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/llm/llmtest"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

func TestGenerate_EmptyDocumentStillProducesAnalysis(t *testing.T) {
	doc := &model.Document{ReportID: "empty", Metadata: model.DocumentMetadata{TotalPages: 1}}

	res, err := NewGenerator(nil).Generate(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.True(t, res.Run.Partial)
	assert.Contains(t, res.Run.Issues, "Empty document_flow - no pages extracted")
	assert.NotNil(t, res.Sectors)
	assert.Empty(t, res.Sectors)
	assert.GreaterOrEqual(t, len(res.Overall.ExecutiveSummary), 100)
	assert.Equal(t, model.ConfidenceLow, res.Overall.SentimentScore.Confidence)
	assert.Equal(t, []string{RecommendationNoLLM}, res.Overall.Recommendations)
	assert.Empty(t, res.Overall.KeyThemes)
	assert.Equal(t, model.AnalysisVersion, res.Metadata.Version)
	assert.Equal(t, model.UnknownModel, res.Metadata.LLMModel)
	assert.NotEmpty(t, res.Metadata.RunID)
	assert.NoError(t, res.Overall.Validate())
}

func TestApply_EmptyDocumentKeepsSectorAnalysesKey(t *testing.T) {
	doc := &model.Document{ReportID: "empty", DocumentFlow: []model.PageFlow{}, SeriesIndex: map[string]model.SeriesEntry{}}

	res, err := NewGenerator(nil).Generate(context.Background(), doc)
	require.NoError(t, err)

	data, err := json.Marshal(Apply(doc, res))
	require.NoError(t, err)

	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &keys))
	require.Contains(t, keys, "sector_analyses")
	assert.JSONEq(t, `{}`, string(keys["sector_analyses"]))
	assert.Contains(t, keys, "overall_analysis")
	assert.Contains(t, keys, "analysis_metadata")
}

func TestGenerate_WithCollaborator(t *testing.T) {
	client := scriptedLLM()
	res, err := NewGenerator(client).Generate(context.Background(), fullDocument())
	require.NoError(t, err)

	assert.False(t, res.Run.Partial)
	assert.Zero(t, res.Run.LLMFailures)
	require.Len(t, res.Sectors, 4)

	core := res.Sectors[model.SectorCore]
	assert.Equal(t, 2, core.SeriesCount)
	assert.Equal(t, model.TrendAccelerating, core.DominantTrend)
	assert.Equal(t, model.PhaseB, core.BusinessPhase)
	assert.Equal(t, []string{"US ISM PMI"}, core.LeadingIndicators)
	assert.Equal(t, []int{2, 3}, core.SourcePages)
	assert.Equal(t, []string{"US Industrial Production insight", "US ISM PMI insight"}, core.KeyInsights)
	assert.Equal(t, model.TrendSlowing, res.Sectors[model.SectorFinancial].DominantTrend)
	assert.Equal(t, model.TrendDeclining, res.Sectors[model.SectorConstruction].DominantTrend)
	assert.Equal(t, model.TrendRecovering, res.Sectors[model.SectorManufacturing].DominantTrend)

	overall := res.Overall
	require.Len(t, overall.KeyThemes, 2)
	assert.Equal(t, "Manufacturing rebound", overall.KeyThemes[0].ThemeName)
	assert.Equal(t, 10.0, overall.KeyThemes[0].SignificanceScore)
	assert.Equal(t, 3, overall.KeyThemes[0].Frequency)
	assert.Equal(t, []string{"manufacturing"}, overall.KeyThemes[0].AffectedSectors)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, overall.KeyThemes[0].SourcePages)
	assert.Equal(t, "Unknown Theme", overall.KeyThemes[1].ThemeName)
	assert.Equal(t, 1, overall.KeyThemes[1].Frequency)
	assert.Equal(t, []string{"Invest ahead of the upturn", "Watch rates"}, overall.Recommendations)

	assert.Equal(t, model.DirectionMixed, overall.CrossSectorTrends.OverallDirection)
	assert.Equal(t, []model.Sector{model.SectorCore, model.SectorManufacturing}, overall.CrossSectorTrends.SectorsInGrowth)
	assert.Equal(t, []model.Sector{model.SectorFinancial, model.SectorConstruction}, overall.CrossSectorTrends.SectorsInDecline)

	sentiment := overall.SentimentScore
	assert.Equal(t, 3, sentiment.Score)
	assert.Equal(t, model.LabelNeutral, sentiment.Label)
	assert.Equal(t, model.ConfidenceHigh, sentiment.Confidence)
	assert.InDelta(t, 0.4, sentiment.SectorWeights[model.SectorCore], 1e-9)
	assert.Len(t, sentiment.IndicatorSignals, 8)

	assert.Equal(t, "fake-model", res.Metadata.LLMModel)
	assert.Equal(t, "1.2.0", res.Metadata.GeneratorVersion)
}

func TestGenerate_FailingCollaboratorDegradesConfidence(t *testing.T) {
	gen := NewGenerator(llmtest.Failing())
	res, err := gen.Generate(context.Background(), fullDocument())
	require.NoError(t, err)

	// 4 个板块摘要 + 执行摘要 + 主题 + 建议
	assert.Equal(t, 7, res.Run.LLMFailures)
	assert.Equal(t, model.ConfidenceLow, res.Overall.SentimentScore.Confidence)
	assert.Equal(t, []string{RecommendationFallback}, res.Overall.Recommendations)
	assert.Empty(t, res.Overall.KeyThemes)
	assert.Equal(t,
		"The core sector analysis covers 2 economic series including US Industrial Production, US ISM PMI. Detailed analysis requires LLM processing.",
		res.Sectors[model.SectorCore].Summary)
	assert.Contains(t, res.Overall.ExecutiveSummary, "This ITR Trends Report for October 2025 covers economic analysis across 4 sectors: core, financial, construction, manufacturing.")

	// 运行状态不跨调用累积
	again, err := gen.Generate(context.Background(), fullDocument())
	require.NoError(t, err)
	assert.Equal(t, 7, again.Run.LLMFailures)
	assert.NotEqual(t, res.Run.RunID, again.Run.RunID)
}

func TestGenerate_DeterministicStepsReproduce(t *testing.T) {
	gen := NewGenerator(nil)
	a, err := gen.Generate(context.Background(), fullDocument())
	require.NoError(t, err)
	b, err := gen.Generate(context.Background(), fullDocument())
	require.NoError(t, err)

	assert.Equal(t, a.Overall.SentimentScore, b.Overall.SentimentScore)
	assert.Equal(t, a.Overall.CrossSectorTrends, b.Overall.CrossSectorTrends)
	for s := range a.Sectors {
		assert.Equal(t, a.Sectors[s].PhaseDistribution, b.Sectors[s].PhaseDistribution)
	}
}

func TestGenerate_ResultRoundTrips(t *testing.T) {
	res, err := NewGenerator(scriptedLLM()).Generate(context.Background(), fullDocument())
	require.NoError(t, err)

	data, err := json.Marshal(res.Overall)
	require.NoError(t, err)
	var overall model.OverallAnalysis
	require.NoError(t, json.Unmarshal(data, &overall))
	assert.Equal(t, res.Overall, overall)

	data, err = json.Marshal(res.Sectors[model.SectorCore])
	require.NoError(t, err)
	var core model.SectorAnalysis
	require.NoError(t, json.Unmarshal(data, &core))
	assert.Equal(t, res.Sectors[model.SectorCore], core)
}

func TestGenerate_Errors(t *testing.T) {
	_, err := NewGenerator(nil).Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilDocument)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewGenerator(nil).Generate(ctx, fullDocument())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegenerate_PreservesFlowAndRecordsVersion(t *testing.T) {
	gen := NewGenerator(nil)
	doc := fullDocument()

	first, err := gen.Generate(context.Background(), doc)
	require.NoError(t, err)
	analyzed := Apply(doc, first)
	assert.Empty(t, first.Metadata.RegeneratedFromVersion)

	before, err := json.Marshal(analyzed.DocumentFlow)
	require.NoError(t, err)

	second, err := gen.Regenerate(context.Background(), analyzed)
	require.NoError(t, err)
	regenerated := Apply(analyzed, second)

	after, err := json.Marshal(regenerated.DocumentFlow)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Equal(t, "1.0", regenerated.AnalysisMetadata.RegeneratedFromVersion)
	assert.Equal(t, "1.1", regenerated.AnalysisMetadata.Version)

	export := Export(regenerated)
	assert.Equal(t, doc.ReportID, export.ReportID)
	assert.Same(t, regenerated.OverallAnalysis, export.OverallAnalysis)
	assert.Len(t, export.SectorAnalyses, 4)
}

func TestNextVersion(t *testing.T) {
	assert.Equal(t, "1.1", NextVersion("1.0"))
	assert.Equal(t, "2.10", NextVersion("2.9"))
	assert.Equal(t, model.AnalysisVersion, NextVersion("v1"))
	assert.Equal(t, model.AnalysisVersion, NextVersion("1.x"))
}
