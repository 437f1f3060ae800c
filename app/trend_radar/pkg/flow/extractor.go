package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/llm"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/pdfsource"
)

// ErrNoPages 源文档没有任何页面
var ErrNoPages = errors.New("document has no pages")

// Extractor 从 PDF 原语重建文档内容流
type Extractor struct {
	client       llm.Client
	minImageSize int
	now          func() time.Time
}

// NewExtractor client 为 nil 时全部使用确定性兜底
func NewExtractor(client llm.Client, minImageSize int) *Extractor {
	return &Extractor{client: client, minImageSize: minImageSize, now: time.Now}
}

// Extract 逐页构建 PageFlow 并汇总；每次调用使用独立的块序号
func (e *Extractor) Extract(ctx context.Context, src pdfsource.Document) (*model.Document, error) {
	total := src.NumPages()
	if total == 0 {
		return nil, fmt.Errorf("%s: %w", src.Name(), ErrNoPages)
	}

	builder := NewBuilder(NewClassifier(&Sequencer{}, e.minImageSize), NewInterpreter(e.client), e.client)
	log := logger.ForReport(ReportID(src.Name()))
	log.Infof("开始抽取内容流，共 %d 页", total)

	pages := make([]model.PageFlow, 0, total)
	for n := 1; n <= total; n++ {
		page, err := src.Page(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", n, err)
		}
		flow := builder.Build(ctx, page)
		log.Debugf("第 %d/%d 页: %s %s，%d 个内容块", n, total, flow.PageType, flow.SeriesName, len(flow.Blocks))
		pages = append(pages, flow)
	}

	doc := Assemble(SourceMeta{Filename: src.Name(), TotalPages: total, ExtractedAt: e.now()}, pages)
	log.Infof("内容流抽取完成: %d 个系列，%d 张图表", len(doc.SeriesIndex), doc.Metadata.TotalCharts)
	return &doc, nil
}
