package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/catalog"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/llm"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/pdfsource"
)

const (
	summaryTextLimit     = 4000
	insightsPerBlock     = 3
	maxPageInsights      = 5
	executiveSummaryPage = 5
)

const pageSummarySystemPrompt = `You are an economic analyst summarizing pages of the ITR Economics Trends Report.
Write one or two plain sentences. Do not use bullet points or markdown.`

const pageSummaryPrompt = `Page %d (%s)%s.

Page content:
%s

Summarize the main point of this page for a business reader.`

// Builder 单页内容流构建
type Builder struct {
	classifier  *Classifier
	interpreter *Interpreter
	client      llm.Client
}

// NewBuilder 创建页面构建器；client 可为 nil
func NewBuilder(classifier *Classifier, interpreter *Interpreter, client llm.Client) *Builder {
	return &Builder{classifier: classifier, interpreter: interpreter, client: client}
}

// Subject 页面主题
type Subject struct {
	PageType   model.PageType
	SeriesName string
	Sector     model.Sector
}

// IdentifySubject 页面标记优先于系列匹配，系列匹配按目录顺序第一个命中
func IdentifySubject(text string, pageNumber int) Subject {
	switch {
	case strings.Contains(text, "Table of Contents"):
		return Subject{PageType: model.PageTableOfContents}
	case strings.Contains(text, "Executive Summary") && pageNumber <= executiveSummaryPage:
		return Subject{PageType: model.PageExecutiveSummary}
	case strings.Contains(text, "At-a-Glance") || strings.Contains(text, "PHASE KEY"):
		return Subject{PageType: model.PageAtAGlance}
	}
	if name, sector, ok := catalog.Identify(text); ok {
		return Subject{PageType: model.PageSeries, SeriesName: name, Sector: sector}
	}
	return Subject{PageType: model.PageOther}
}

// Build 构建单页 PageFlow
func (b *Builder) Build(ctx context.Context, page pdfsource.Page) model.PageFlow {
	subject := IdentifySubject(page.Text, page.Number)

	var blocks []model.ContentBlock
	for _, g := range page.Groups {
		if block, ok := b.classifier.ClassifyText(g, page.Number); ok {
			blocks = append(blocks, block)
		}
	}
	for i, img := range page.Images {
		block, ok := b.classifier.ClassifyImage(img, i, page.Number)
		if !ok {
			continue
		}
		interp := b.interpreter.Interpret(ctx, block, page.Text, subject.SeriesName)
		blocks = append(blocks, Apply(block, interp, subject.SeriesName))
	}
	if block, ok := b.classifier.ForecastTable(page.Text, page.Number); ok {
		blocks = append(blocks, block)
	}
	model.SortBlocks(blocks)
	if blocks == nil {
		blocks = []model.ContentBlock{}
	}

	flow := model.PageFlow{
		PageNumber:  page.Number,
		PageType:    subject.PageType,
		SeriesName:  subject.SeriesName,
		Sector:      subject.Sector,
		Blocks:      blocks,
		KeyInsights: KeyInsights(blocks),
		RawText:     page.Text,
	}
	flow.PageSummary = b.summarize(ctx, flow)
	return flow
}

func (b *Builder) summarize(ctx context.Context, flow model.PageFlow) string {
	text := textContent(flow.Blocks)
	if b.client == nil || text == "" {
		return FallbackPageSummary(flow)
	}

	subject := ""
	if flow.SeriesName != "" {
		subject = fmt.Sprintf(" about %s in the %s sector", flow.SeriesName, flow.Sector)
	}
	out, err := b.client.Complete(ctx, pageSummarySystemPrompt,
		fmt.Sprintf(pageSummaryPrompt, flow.PageNumber, flow.PageType, subject, truncate(text, summaryTextLimit)))
	if err != nil || strings.TrimSpace(out) == "" {
		logger.Log.Warnf("第 %d 页摘要生成失败，使用兜底摘要: %v", flow.PageNumber, err)
		return FallbackPageSummary(flow)
	}
	return strings.TrimSpace(out)
}

// FallbackPageSummary 按页面类型的单句摘要
func FallbackPageSummary(flow model.PageFlow) string {
	switch {
	case flow.SeriesName != "":
		return fmt.Sprintf("Economic series page for %s in the %s sector.", flow.SeriesName, flow.Sector)
	case flow.PageType == model.PageExecutiveSummary:
		return "Executive Summary providing an overview of current economic conditions and outlook."
	case flow.PageType == model.PageAtAGlance:
		return "At-a-Glance summary showing business cycle phases for multiple economic indicators."
	default:
		return fmt.Sprintf("Page %d content.", flow.PageNumber)
	}
}

// KeyInsights 每个项目符号块取前 3 条，HIGHLIGHT 标题后紧跟的块同样处理；去重后最多 5 条
func KeyInsights(blocks []model.ContentBlock) []string {
	out := []string{}
	seen := make(map[string]bool)
	add := func(text string) {
		frags := SplitBullets(text)
		if len(frags) > insightsPerBlock {
			frags = frags[:insightsPerBlock]
		}
		for _, f := range frags {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}

	for i, block := range blocks {
		switch block.BlockType {
		case model.BlockBulletList:
			add(block.Content.Text)
		case model.BlockSectionHeading:
			if !strings.Contains(strings.ToUpper(block.Content.Text), "HIGHLIGHT") || i+1 >= len(blocks) {
				continue
			}
			next := blocks[i+1]
			if next.BlockType == model.BlockText || next.BlockType == model.BlockBulletList {
				add(next.Content.Text)
			}
		}
	}

	if len(out) > maxPageInsights {
		out = out[:maxPageInsights]
	}
	return out
}

func textContent(blocks []model.ContentBlock) string {
	var parts []string
	for _, block := range blocks {
		if block.BlockType.TextLike() && block.Content.Text != "" {
			parts = append(parts, block.Content.Text)
		}
	}
	return strings.Join(parts, "\n")
}
