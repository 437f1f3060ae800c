package analysis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/llm"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

// ErrNilDocument 未提供文档
var ErrNilDocument = errors.New("analysis: nil document")

// Generator 分析生成器。实例无运行期状态，可并发复用。
type Generator struct {
	client   llm.Client
	now      func() time.Time
	newRunID func() string
}

// NewGenerator client 为 nil 时所有步骤走确定性兜底
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client, now: time.Now, newRunID: uuid.NewString}
}

// Result 一次分析运行的全部产出
type Result struct {
	Overall  model.OverallAnalysis
	Sectors  map[model.Sector]model.SectorAnalysis
	Metadata model.AnalysisMetadata
	Run      RunContext
}

// Generate 对已组装的文档生成板块分析与综合分析。
// 协作方失败不会中断运行；只有取消或不变量被破坏时返回 error。
func (g *Generator) Generate(ctx context.Context, doc *model.Document) (*Result, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := g.now()
	validation := Validate(doc)
	rc := newRunContext(g.newRunID(), validation, g.client != nil, started)
	log := logger.ForRun(rc.RunID, doc.ReportID)
	if rc.Partial {
		log.Warnf("文档结构检查发现 %d 个问题，按部分分析处理: %s", len(rc.Issues), strings.Join(rc.Issues, "; "))
	}

	summaries, charts := collect(doc)
	groups := GroupSeries(doc)

	sectors := make(map[model.Sector]model.SectorAnalysis)
	for _, s := range model.Sectors {
		refs := groups[s]
		if len(refs) == 0 {
			continue
		}
		analysis, next, err := g.analyzeSector(ctx, rc, doc, s, refs, summaries)
		if err != nil {
			return nil, fmt.Errorf("analyze sector %s: %w", s, err)
		}
		rc = next
		sectors[s] = analysis
	}

	overall, rc, err := g.overall(ctx, rc, doc, sectors, summaries, charts)
	if err != nil {
		return nil, fmt.Errorf("overall analysis: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	modelName := model.UnknownModel
	if g.client != nil {
		modelName = g.client.Model()
	}
	finished := g.now()
	res := &Result{
		Overall: overall,
		Sectors: sectors,
		Metadata: model.AnalysisMetadata{
			Version:               model.AnalysisVersion,
			GeneratedAt:           finished,
			GeneratorVersion:      model.GeneratorVersion,
			LLMModel:              modelName,
			ProcessingTimeSeconds: model.Round2(finished.Sub(started).Seconds()),
			RunID:                 rc.RunID,
		},
		Run: rc,
	}

	log.Infof("分析完成: %d 个板块，情绪 %d (%s)，置信度 %s，LLM 失败 %d 次，耗时 %.2fs",
		len(sectors), overall.SentimentScore.Score, overall.SentimentScore.Label,
		overall.SentimentScore.Confidence, rc.LLMFailures, res.Metadata.ProcessingTimeSeconds)
	return res, nil
}

// Regenerate 对已有文档重新生成分析，不触碰 document_flow；记录上一版本号
func (g *Generator) Regenerate(ctx context.Context, doc *model.Document) (*Result, error) {
	res, err := g.Generate(ctx, doc)
	if err != nil {
		return nil, err
	}
	if prior := doc.AnalysisMetadata; prior != nil && prior.Version != "" {
		res.Metadata.RegeneratedFromVersion = prior.Version
		res.Metadata.Version = NextVersion(prior.Version)
	}
	return res, nil
}

// NextVersion 次版本号加一："1.0" -> "1.1"；无法解析时回到初始版本
func NextVersion(v string) string {
	major, minor, ok := strings.Cut(v, ".")
	if !ok {
		return model.AnalysisVersion
	}
	ma, err1 := strconv.Atoi(major)
	mi, err2 := strconv.Atoi(minor)
	if err1 != nil || err2 != nil {
		return model.AnalysisVersion
	}
	return fmt.Sprintf("%d.%d", ma, mi+1)
}
