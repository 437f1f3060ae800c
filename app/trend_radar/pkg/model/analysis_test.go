package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSentiment() SentimentScore {
	return SentimentScore{
		Score:      4,
		Label:      LabelBullish,
		Confidence: ConfidenceMedium,
		ContributingFactors: []ContributingFactor{
			{FactorName: "Core Sector Trend", Impact: ImpactPositive, Weight: 0.6, Description: "Core sector showing recovering trend"},
		},
		SectorWeights: map[Sector]float64{SectorCore: 0.6, SectorFinancial: 0.4},
		IndicatorSignals: []IndicatorSignal{
			{IndicatorName: "US Industrial Production", Sector: SectorCore, Direction: DirectionRising, SourcePage: 7},
		},
		Rationale: "Sentiment based on analysis of 2 sectors.",
	}
}

func validSector() SectorAnalysis {
	return SectorAnalysis{
		SectorName:        SectorCore,
		Summary:           strings.Repeat("core economy summary ", 5),
		SeriesCount:       3,
		PhaseDistribution: map[BusinessPhase]int{PhaseA: 2, PhaseB: 1, PhaseC: 0, PhaseD: 0},
		DominantTrend:     TrendRecovering,
		LeadingIndicators: []string{"ITR Leading Indicator"},
		BusinessPhase:     PhaseA,
		Correlations: []SectorCorrelation{
			{RelatedSector: SectorManufacturing, Relationship: "leading", LagMonths: 3, Strength: "strong"},
		},
		KeyInsights: []string{"Industrial production rising"},
		SourcePages: []int{5, 6},
	}
}

func TestSentimentScore_LabelMustMatchScore(t *testing.T) {
	s := validSentiment()
	_, err := NewSentimentScore(s)
	require.NoError(t, err)

	s.Label = LabelNeutral
	_, err = NewSentimentScore(s)
	assert.Error(t, err)
}

func TestSentimentScore_ScoreRange(t *testing.T) {
	for _, score := range []int{0, 6} {
		s := validSentiment()
		s.Score = score
		_, err := NewSentimentScore(s)
		assert.Error(t, err, "score %d", score)
	}
	for score := 1; score <= 5; score++ {
		s := validSentiment()
		s.Score = score
		s.Label, _ = LabelForScore(score)
		_, err := NewSentimentScore(s)
		assert.NoError(t, err, "score %d", score)
	}
}

func TestSentimentScore_WeightsMustSumToOne(t *testing.T) {
	s := validSentiment()
	s.SectorWeights = map[Sector]float64{SectorCore: 0.5, SectorFinancial: 0.3}
	_, err := NewSentimentScore(s)
	assert.Error(t, err)

	s.SectorWeights = map[Sector]float64{SectorCore: 0.505, SectorFinancial: 0.5}
	_, err = NewSentimentScore(s)
	assert.NoError(t, err)

	s.SectorWeights = nil
	_, err = NewSentimentScore(s)
	assert.NoError(t, err)
}

func TestSectorAnalysis_RequiresAllPhases(t *testing.T) {
	a := validSector()
	delete(a.PhaseDistribution, PhaseD)
	_, err := NewSectorAnalysis(a)
	assert.Error(t, err)

	a = validSector()
	a.Summary = "too short"
	_, err = NewSectorAnalysis(a)
	assert.Error(t, err)

	a = validSector()
	a.LeadingIndicators = []string{"a", "b", "c", "d"}
	_, err = NewSectorAnalysis(a)
	assert.Error(t, err)
}

func TestTheme_Bounds(t *testing.T) {
	_, err := NewTheme(Theme{ThemeName: "Housing", SignificanceScore: 10, Frequency: 1})
	assert.NoError(t, err)
	_, err = NewTheme(Theme{ThemeName: "Housing", SignificanceScore: 0.5, Frequency: 1})
	assert.Error(t, err)
	_, err = NewTheme(Theme{ThemeName: "Housing", SignificanceScore: 5, Frequency: 0})
	assert.Error(t, err)
}

func TestAnalysis_RoundTrip(t *testing.T) {
	overall := OverallAnalysis{
		ExecutiveSummary: strings.Repeat("The economy is recovering across sectors. ", 4),
		KeyThemes: []Theme{
			{ThemeName: "Manufacturing Rebound", SignificanceScore: 7.5, Frequency: 3, SourcePages: []int{4, 5}},
		},
		CrossSectorTrends: CrossSectorTrends{
			OverallDirection: DirectionExpanding,
			SectorsInGrowth:  []Sector{SectorCore},
			TrendSummary:     "The economy shows expanding conditions.",
		},
		Recommendations: []string{"Monitor leading indicators for phase transition signals."},
		SentimentScore:  validSentiment(),
	}
	require.NoError(t, overall.Validate())

	data, err := json.Marshal(overall)
	require.NoError(t, err)
	var decoded OverallAnalysis
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, overall, decoded)

	sector := validSector()
	data, err = json.Marshal(sector)
	require.NoError(t, err)
	var decodedSector SectorAnalysis
	require.NoError(t, json.Unmarshal(data, &decodedSector))
	assert.Equal(t, sector, decodedSector)
}

func TestSentimentScore_UnmarshalRejectsMismatch(t *testing.T) {
	raw := `{"score":5,"label":"Bearish","confidence":"high","contributing_factors":[],"sector_weights":{},"indicator_signals":[],"rationale":""}`
	var s SentimentScore
	assert.Error(t, json.Unmarshal([]byte(raw), &s))
}

func TestBlockContent_JSONShapes(t *testing.T) {
	text := ContentBlock{BlockType: BlockText, Content: TextContent("hello"), PageNumber: 1}
	data, err := json.Marshal(text)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content":"hello"`)

	chart := ContentBlock{
		BlockType: BlockChart,
		Content: BlockContent{Chart: &ChartContent{
			ChartType: ChartRateOfChange, ImageXref: 12, Width: 400, Height: 300, ImageData: []byte{1, 2, 3},
		}},
	}
	data, err = json.Marshal(chart)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "image_data")

	var decoded ContentBlock
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.Content.Chart)
	assert.Equal(t, ChartRateOfChange, decoded.Content.Chart.ChartType)
	assert.Equal(t, 12, decoded.Content.Chart.ImageXref)

	rate := 3.5
	table := BlockContent{Table: &ForecastTable{Forecasts: []ForecastPoint{{Year: 2025, Rate1212: &rate}}}}
	data, err = json.Marshal(table)
	require.NoError(t, err)
	var decodedTable BlockContent
	require.NoError(t, json.Unmarshal(data, &decodedTable))
	require.NotNil(t, decodedTable.Table)
	assert.Equal(t, 2025, decodedTable.Table.Forecasts[0].Year)
}

func TestSortBlocks_StableReadingOrder(t *testing.T) {
	blocks := []ContentBlock{
		{SequenceNumber: 1, Position: Position{X0: 300, Y0: 100}},
		{SequenceNumber: 2, Position: Position{X0: 10, Y0: 100}},
		{SequenceNumber: 3, Position: Position{X0: 10, Y0: 20}},
		{SequenceNumber: 4, Position: Position{X0: 10, Y0: 100}},
	}
	SortBlocks(blocks)
	var got []int
	for _, b := range blocks {
		got = append(got, b.SequenceNumber)
	}
	assert.Equal(t, []int{3, 2, 4, 1}, got)
}

func TestParseBusinessPhase(t *testing.T) {
	cases := map[string]BusinessPhase{
		"A":                       PhaseA,
		"phase b":                 PhaseB,
		"Phase C: Slowing Growth": PhaseC,
		" d ":                     PhaseD,
	}
	for in, want := range cases {
		got, ok := ParseBusinessPhase(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "Accelerating", "E"} {
		_, ok := ParseBusinessPhase(in)
		assert.False(t, ok, in)
	}
}
