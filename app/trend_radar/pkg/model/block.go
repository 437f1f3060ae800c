package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// BlockType 内容块类型
type BlockType string

const (
	BlockText           BlockType = "text"
	BlockHeading        BlockType = "heading"
	BlockSectionHeading BlockType = "section_heading"
	BlockBulletList     BlockType = "bullet_list"
	BlockForecastData   BlockType = "forecast_data"
	BlockChart          BlockType = "chart"
	BlockForecastTable  BlockType = "forecast_table"
)

// TextLike 是否为文字类内容块（用于摘要提示词拼接）
func (t BlockType) TextLike() bool {
	switch t {
	case BlockText, BlockHeading, BlockBulletList, BlockSectionHeading:
		return true
	}
	return false
}

// ChartType 图表类型
type ChartType string

const (
	ChartRateOfChange ChartType = "rate_of_change"
	ChartDataTrend    ChartType = "data_trend"
	ChartOverview     ChartType = "overview"
)

// OrdinalChartTypes 每个系列页固定的三图布局
var OrdinalChartTypes = []ChartType{ChartRateOfChange, ChartDataTrend, ChartOverview}

// ChartTypeForIndex 按页内序号分配图表类型，第四张起为 chart_{n}
func ChartTypeForIndex(i int) ChartType {
	if i >= 0 && i < len(OrdinalChartTypes) {
		return OrdinalChartTypes[i]
	}
	return ChartType(fmt.Sprintf("chart_%d", i+1))
}

// Position 页面坐标（左上角为原点）
type Position struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width of the bounding box.
func (p Position) Width() float64 { return p.X1 - p.X0 }

// Height of the bounding box.
func (p Position) Height() float64 { return p.Y1 - p.Y0 }

// ChartContent 图表块内容；图片字节只在内存中传递，不序列化
type ChartContent struct {
	ChartType ChartType `json:"chart_type"`
	ImageXref int       `json:"image_xref"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	ImageData []byte    `json:"-"`
	MimeType  string    `json:"-"`
}

// ForecastPoint 单年预测
type ForecastPoint struct {
	Year     int      `json:"year"`
	Rate1212 *float64 `json:"rate_12_12"`
	Value    *float64 `json:"value"`
}

// ForecastTable 预测表
type ForecastTable struct {
	Forecasts []ForecastPoint `json:"forecasts"`
}

// BlockContent 内容块的 content 字段：文字块为字符串，图表与预测表为对象
type BlockContent struct {
	Text  string
	Chart *ChartContent
	Table *ForecastTable
}

// TextContent wraps a plain string.
func TextContent(s string) BlockContent { return BlockContent{Text: s} }

// MarshalJSON 输出与块类型对应的形状
func (c BlockContent) MarshalJSON() ([]byte, error) {
	switch {
	case c.Chart != nil:
		return json.Marshal(c.Chart)
	case c.Table != nil:
		return json.Marshal(c.Table)
	default:
		return json.Marshal(c.Text)
	}
}

// UnmarshalJSON 根据 JSON 形状还原
func (c *BlockContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = BlockContent{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &c.Text)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("block content: %w", err)
	}
	if _, ok := probe["forecasts"]; ok {
		c.Table = &ForecastTable{}
		return json.Unmarshal(data, c.Table)
	}
	c.Chart = &ChartContent{}
	return json.Unmarshal(data, c.Chart)
}

// ChartInterpretation 图表解读结果
type ChartInterpretation struct {
	Description          string     `json:"description"`
	TrendDirection       string     `json:"trend_direction,omitempty"`
	CurrentPhase         string     `json:"current_phase,omitempty"`
	BusinessImplications string     `json:"business_implications,omitempty"`
	KeyPatterns          []string   `json:"key_patterns,omitempty"`
	Confidence           Confidence `json:"confidence"`
}

// BlockMetadata 内容块元数据
type BlockMetadata struct {
	FontSize             float64              `json:"font_size,omitempty"`
	IsBold               bool                 `json:"is_bold,omitempty"`
	Bullets              []string             `json:"bullets,omitempty"`
	Forecasts            []ForecastPoint      `json:"forecasts,omitempty"`
	ChartIndex           *int                 `json:"chart_index,omitempty"`
	TableType            string               `json:"table_type,omitempty"`
	VisionInterpretation *ChartInterpretation `json:"vision_interpretation,omitempty"`
	TrendDirection       string               `json:"trend_direction,omitempty"`
	CurrentPhase         string               `json:"current_phase,omitempty"`
	BusinessImplications string               `json:"business_implications,omitempty"`
	KeyPatterns          []string             `json:"key_patterns,omitempty"`
}

// ContentBlock 页面中的一个已分类、带坐标的内容单元
type ContentBlock struct {
	BlockType      BlockType     `json:"block_type"`
	Content        BlockContent  `json:"content"`
	PageNumber     int           `json:"page_number"`
	Position       Position      `json:"position"`
	SequenceNumber int           `json:"sequence_number"`
	Interpretation string        `json:"interpretation,omitempty"`
	Summary        string        `json:"summary,omitempty"`
	Metadata       BlockMetadata `json:"metadata"`
}

// ChartType returns the chart type of a chart block, or "" for other blocks.
func (b ContentBlock) ChartType() ChartType {
	if b.Content.Chart == nil {
		return ""
	}
	return b.Content.Chart.ChartType
}
