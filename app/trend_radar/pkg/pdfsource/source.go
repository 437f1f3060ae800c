package pdfsource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

var (
	// ErrNotFound 源文件不存在
	ErrNotFound = errors.New("source document not found")
	// ErrPageRange 页码越界
	ErrPageRange = errors.New("page out of range")
)

// TextSpan 单一字体的一段文字
type TextSpan struct {
	Text     string
	FontName string
	FontSize float64
	BBox     model.Position
}

// SpanGroup 渲染器输出的一个文本块（若干行）
type SpanGroup struct {
	Lines [][]TextSpan
	BBox  model.Position
}

// Text 行内拼接、行间换行
func (g SpanGroup) Text() string {
	lines := make([]string, 0, len(g.Lines))
	for _, line := range g.Lines {
		var sb strings.Builder
		for _, s := range line {
			sb.WriteString(s.Text)
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

// Spans 展开所有 span
func (g SpanGroup) Spans() []TextSpan {
	var out []TextSpan
	for _, line := range g.Lines {
		out = append(out, line...)
	}
	return out
}

// Image 页面内嵌图片描述
type Image struct {
	Xref     int
	Width    int
	Height   int
	Data     []byte
	MimeType string
}

// Page 单页原语
type Page struct {
	Number int // 从 1 开始
	Text   string
	Groups []SpanGroup
	Images []Image
}

// Document PDF 原语提供方
type Document interface {
	Name() string
	NumPages() int
	Page(ctx context.Context, number int) (Page, error)
	Close() error
}

// Memory 内存中的原语文档，便于导入已抽取的数据
type Memory struct {
	Filename string
	Pages    []Page
}

// Name 文件名
func (m *Memory) Name() string { return m.Filename }

// NumPages 页数
func (m *Memory) NumPages() int { return len(m.Pages) }

// Page 按 1 起始页码取页
func (m *Memory) Page(ctx context.Context, number int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if number < 1 || number > len(m.Pages) {
		return Page{}, fmt.Errorf("%w: %d of %d", ErrPageRange, number, len(m.Pages))
	}
	p := m.Pages[number-1]
	p.Number = number
	return p, nil
}

// Close 无操作
func (m *Memory) Close() error { return nil }
