package flow

import (
	"strings"
	"unicode/utf8"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/pdfsource"
)

const (
	headingMaxLen      = 100
	headingMinFontSize = 12.0
	defaultFontSize    = 10.0
	// DefaultMinImageSize 小于该尺寸的图片视为装饰图标
	DefaultMinImageSize = 50
)

var sectionKeywords = []string{"OVERVIEW", "DATA TREND", "HIGHLIGHTS", "FORECAST", "MANAGEMENT OBJECTIVE"}

// Sequencer 文档内单调递增的块序号，创建时分配，与最终排序无关
type Sequencer struct {
	n int
}

// Next 下一个序号
func (s *Sequencer) Next() int {
	s.n++
	return s.n
}

// Classifier 把文本块或图片归类为 ContentBlock
type Classifier struct {
	seq          *Sequencer
	minImageSize int
}

// NewClassifier 创建分类器；同一文档的所有页共享一个 Sequencer
func NewClassifier(seq *Sequencer, minImageSize int) *Classifier {
	if minImageSize <= 0 {
		minImageSize = DefaultMinImageSize
	}
	return &Classifier{seq: seq, minImageSize: minImageSize}
}

// ClassifyText 文本块分类；空文本或零面积 bbox 直接跳过
func (c *Classifier) ClassifyText(g pdfsource.SpanGroup, page int) (model.ContentBlock, bool) {
	text := strings.TrimSpace(g.Text())
	if text == "" || g.BBox.Width() <= 0 || g.BBox.Height() <= 0 {
		return model.ContentBlock{}, false
	}

	size := averageFontSize(g.Spans())
	bold := hasBold(g.Spans())
	blockType := ClassifyText(text, size, bold)

	meta := model.BlockMetadata{FontSize: model.Round2(size), IsBold: bold}
	switch blockType {
	case model.BlockBulletList:
		meta.Bullets = SplitBullets(text)
	case model.BlockForecastData:
		meta.Forecasts = ParseForecasts(text)
	}

	return model.ContentBlock{
		BlockType:      blockType,
		Content:        model.TextContent(text),
		PageNumber:     page,
		Position:       g.BBox,
		SequenceNumber: c.seq.Next(),
		Metadata:       meta,
	}, true
}

// ClassifyText 纯规则：section_heading > heading > bullet_list > forecast_data > text
func ClassifyText(text string, avgFontSize float64, bold bool) model.BlockType {
	if bold && utf8.RuneCountInString(text) < headingMaxLen {
		upper := strings.ToUpper(text)
		for _, kw := range sectionKeywords {
			if strings.Contains(upper, kw) {
				return model.BlockSectionHeading
			}
		}
		if avgFontSize > headingMinFontSize {
			return model.BlockHeading
		}
	}
	if strings.HasPrefix(text, "•") || strings.HasPrefix(text, "-") {
		return model.BlockBulletList
	}
	if forecastDataPattern.MatchString(text) {
		return model.BlockForecastData
	}
	return model.BlockText
}

// ClassifyImage 图片分类；index 为页内原始序号（含被丢弃的小图）
func (c *Classifier) ClassifyImage(img pdfsource.Image, index, page int) (model.ContentBlock, bool) {
	if img.Width < c.minImageSize || img.Height < c.minImageSize {
		return model.ContentBlock{}, false
	}
	idx := index
	return model.ContentBlock{
		BlockType: model.BlockChart,
		Content: model.BlockContent{Chart: &model.ChartContent{
			ChartType: model.ChartTypeForIndex(index),
			ImageXref: img.Xref,
			Width:     img.Width,
			Height:    img.Height,
			ImageData: img.Data,
			MimeType:  img.MimeType,
		}},
		PageNumber:     page,
		Position:       model.Position{X1: float64(img.Width), Y1: float64(img.Height)},
		SequenceNumber: c.seq.Next(),
		Metadata:       model.BlockMetadata{ChartIndex: &idx},
	}, true
}

// ForecastTable 页面含 FORECAST 时输出预测表块
func (c *Classifier) ForecastTable(pageText string, page int) (model.ContentBlock, bool) {
	if !strings.Contains(pageText, "FORECAST") {
		return model.ContentBlock{}, false
	}
	points := ParseForecasts(pageText)
	if len(points) == 0 {
		return model.ContentBlock{}, false
	}
	return model.ContentBlock{
		BlockType:      model.BlockForecastTable,
		Content:        model.BlockContent{Table: &model.ForecastTable{Forecasts: points}},
		PageNumber:     page,
		SequenceNumber: c.seq.Next(),
		Metadata:       model.BlockMetadata{TableType: "forecast"},
	}, true
}

func averageFontSize(spans []pdfsource.TextSpan) float64 {
	var sum float64
	var n int
	for _, s := range spans {
		if s.FontSize > 0 {
			sum += s.FontSize
			n++
		}
	}
	if n == 0 {
		return defaultFontSize
	}
	return sum / float64(n)
}

func hasBold(spans []pdfsource.TextSpan) bool {
	for _, s := range spans {
		if pdfsource.IsBoldFont(s.FontName) {
			return true
		}
	}
	return false
}
