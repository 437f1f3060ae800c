package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/pdfsource"
)

func group(text, font string, size, y0 float64) pdfsource.SpanGroup {
	box := model.Position{X0: 40, Y0: y0, X1: 500, Y1: y0 + size}
	return pdfsource.SpanGroup{
		Lines: [][]pdfsource.TextSpan{{{Text: text, FontName: font, FontSize: size, BBox: box}}},
		BBox:  box,
	}
}

func TestClassifyText_Rules(t *testing.T) {
	long := "HIGHLIGHTS of a very long bold paragraph that keeps going well beyond one hundred characters in total length"

	tests := []struct {
		name string
		text string
		size float64
		bold bool
		want model.BlockType
	}{
		{"section keyword", "DATA TREND", 10, true, model.BlockSectionHeading},
		{"section keyword lower case", "Management Objective", 10, true, model.BlockSectionHeading},
		{"large bold heading", "US Industrial Production", 16, true, model.BlockHeading},
		{"small bold text", "Note", 10, true, model.BlockText},
		{"long bold keyword", long, 16, true, model.BlockText},
		{"large regular text", "US Industrial Production", 16, false, model.BlockText},
		{"bullet glyph", "• Output rose", 10, false, model.BlockBulletList},
		{"hyphen", "- Output rose", 10, false, model.BlockBulletList},
		{"forecast data", "2025:\n12/12 3.5%", 10, false, model.BlockForecastData},
		{"plain", "Production rose in October.", 10, false, model.BlockText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyText(tt.text, tt.size, tt.bold))
		})
	}
}

func TestClassifier_TextBlocks(t *testing.T) {
	c := NewClassifier(&Sequencer{}, 0)

	_, ok := c.ClassifyText(group("   ", "Helvetica", 10, 100), 1)
	assert.False(t, ok, "blank text is skipped")

	flat := group("text", "Helvetica", 10, 100)
	flat.BBox.Y1 = flat.BBox.Y0
	_, ok = c.ClassifyText(flat, 1)
	assert.False(t, ok, "zero-height bbox is skipped")

	b1, ok := c.ClassifyText(group("• One • Two", "Helvetica", 10, 100), 3)
	require.True(t, ok)
	assert.Equal(t, model.BlockBulletList, b1.BlockType)
	assert.Equal(t, []string{"One", "Two"}, b1.Metadata.Bullets)
	assert.Equal(t, 3, b1.PageNumber)

	b2, ok := c.ClassifyText(group("2026:\n12/12 -1.2%", "Helvetica", 10, 120), 3)
	require.True(t, ok)
	assert.Equal(t, model.BlockForecastData, b2.BlockType)
	require.Len(t, b2.Metadata.Forecasts, 1)
	assert.Equal(t, 2026, b2.Metadata.Forecasts[0].Year)
	assert.InDelta(t, -1.2, *b2.Metadata.Forecasts[0].Rate1212, 1e-9)

	assert.Equal(t, 1, b1.SequenceNumber)
	assert.Equal(t, 2, b2.SequenceNumber)
}

func TestClassifier_Images(t *testing.T) {
	c := NewClassifier(&Sequencer{}, DefaultMinImageSize)
	images := []pdfsource.Image{
		{Xref: 10, Width: 20, Height: 20},
		{Xref: 11, Width: 400, Height: 300},
		{Xref: 12, Width: 400, Height: 300},
		{Xref: 13, Width: 400, Height: 300},
		{Xref: 14, Width: 49, Height: 300},
	}

	var got []model.ContentBlock
	for i, img := range images {
		if b, ok := c.ClassifyImage(img, i, 7); ok {
			got = append(got, b)
		}
	}

	require.Len(t, got, 3)
	assert.Equal(t, model.ChartDataTrend, got[0].ChartType())
	assert.Equal(t, model.ChartOverview, got[1].ChartType())
	assert.Equal(t, model.ChartType("chart_4"), got[2].ChartType())
	assert.Equal(t, 11, got[0].Content.Chart.ImageXref)
	assert.Equal(t, model.Position{X1: 400, Y1: 300}, got[0].Position)
	require.NotNil(t, got[0].Metadata.ChartIndex)
	assert.Equal(t, 1, *got[0].Metadata.ChartIndex)
}

func TestParseForecasts(t *testing.T) {
	text := "FORECAST\n2025:\n12/12 3.5%\n$1,234.5\n2026:\n12/12 -1.2%\n2025: repeated 9.9%\n"

	points := ParseForecasts(text)
	require.Len(t, points, 2)

	assert.Equal(t, 2025, points[0].Year)
	require.NotNil(t, points[0].Rate1212)
	assert.InDelta(t, 3.5, *points[0].Rate1212, 1e-9)
	require.NotNil(t, points[0].Value)
	assert.InDelta(t, 1234.5, *points[0].Value, 1e-9)

	assert.Equal(t, 2026, points[1].Year)
	assert.InDelta(t, -1.2, *points[1].Rate1212, 1e-9)
	assert.Nil(t, points[1].Value)
}

func TestForecastTable(t *testing.T) {
	c := NewClassifier(&Sequencer{}, 0)

	_, ok := c.ForecastTable("2025:\n12/12 3.5%", 2)
	assert.False(t, ok, "needs FORECAST marker")

	b, ok := c.ForecastTable("FORECAST\n2025:\n12/12 3.5%\n", 2)
	require.True(t, ok)
	assert.Equal(t, model.BlockForecastTable, b.BlockType)
	assert.Equal(t, "forecast", b.Metadata.TableType)
	assert.Equal(t, model.Position{}, b.Position)
	require.NotNil(t, b.Content.Table)
	assert.Len(t, b.Content.Table.Forecasts, 1)
}

func TestSplitBullets(t *testing.T) {
	assert.Equal(t, []string{"Growth slows", "Rates rise"}, SplitBullets("• Growth slows\n• Rates rise"))
	assert.Equal(t, []string{"one", "two wrapped"}, SplitBullets("- one\n- two\n  wrapped"))
	assert.Equal(t, []string{"plain text"}, SplitBullets("plain text"))
	assert.Empty(t, SplitBullets("  •  "))
}
