package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/analysis"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/config"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/flow"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/llm"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/pdfsource"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/storage"
)

// ErrNoStore 未配置存储，无法按 report_id 读取已有文档
var ErrNoStore = errors.New("no document store configured")

// Engine 核心处理引擎：抽取、分析、持久化
type Engine struct {
	cfg    *config.Config
	store  storage.Store
	client llm.Client
	open   func(path string) (pdfsource.Document, error)
}

// NewEngine 创建引擎实例；store 可为 nil
func NewEngine(ctx context.Context, cfg *config.Config, store storage.Store) (*Engine, error) {
	client, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return New(cfg, store, client), nil
}

// New 使用已创建的 LLM 客户端；client 为 nil 时全部走兜底
func New(cfg *config.Config, store storage.Store, client llm.Client) *Engine {
	return &Engine{
		cfg:    cfg,
		store:  store,
		client: client,
		open: func(path string) (pdfsource.Document, error) {
			f, err := pdfsource.Open(path)
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}

// ProcessFile 处理单个 PDF 文件
func (e *Engine) ProcessFile(ctx context.Context, path string) (*model.Document, error) {
	src, err := e.open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return e.Process(ctx, src)
}

// Process 抽取内容流，按配置生成分析，随后写出 JSON 并入库
func (e *Engine) Process(ctx context.Context, src pdfsource.Document) (*model.Document, error) {
	doc, err := flow.NewExtractor(e.client, e.cfg.Extraction.MinImageSize).Extract(ctx, src)
	if err != nil {
		return nil, err
	}

	if e.cfg.Extraction.GenerateAnalysis {
		res, err := analysis.NewGenerator(e.client).Generate(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("generate analysis for %s: %w", doc.ReportID, err)
		}
		doc = analysis.Apply(doc, res)
		logger.ForReport(doc.ReportID).Infof("分析完成: 情绪 %d (%s)，置信度 %s",
			res.Overall.SentimentScore.Score, res.Overall.SentimentScore.Label, res.Overall.SentimentScore.Confidence)
	}

	if err := e.persist(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Regenerate 读取已入库文档，仅重新生成分析部分
func (e *Engine) Regenerate(ctx context.Context, reportID string) (*model.Document, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}

	doc, err := e.store.GetDocument(ctx, reportID)
	if err != nil {
		return nil, err
	}

	res, err := analysis.NewGenerator(e.client).Regenerate(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("regenerate analysis for %s: %w", reportID, err)
	}
	doc = analysis.Apply(doc, res)
	logger.ForReport(reportID).Infof("分析已重新生成: version=%s", res.Metadata.Version)

	if err := e.persist(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (e *Engine) persist(ctx context.Context, doc *model.Document) error {
	if dir := e.cfg.Extraction.OutputDir; dir != "" {
		path, err := WriteFlowJSON(dir, doc)
		if err != nil {
			return err
		}
		logger.ForReport(doc.ReportID).Infof("内容流已写出: %s", path)
	}

	if e.store != nil {
		if err := e.store.UpsertDocument(ctx, doc); err != nil {
			return fmt.Errorf("save document %s: %w", doc.ReportID, err)
		}
		logger.ForReport(doc.ReportID).Info("文档已保存到数据库")
	}
	return nil
}

// WriteFlowJSON 写出 <dir>/<report_id>_flow.json
func WriteFlowJSON(dir string, doc *model.Document) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode document %s: %w", doc.ReportID, err)
	}

	path := filepath.Join(dir, doc.ReportID+"_flow.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// RunOptions 批量运行选项
type RunOptions struct {
	Paths            []string
	ProgressCallback func(status string, progress int)
}

// Run 并发处理多个 PDF，并发度受 Concurrency.Workers 限制，LLM 限流器全局共享。
// 单个文件失败只记录日志；全部失败时返回 error。
func (e *Engine) Run(ctx context.Context, opts RunOptions) ([]*model.Document, error) {
	if len(opts.Paths) == 0 {
		return nil, fmt.Errorf("no pdf files provided")
	}

	workers := e.cfg.Concurrency.Workers
	if workers <= 0 {
		workers = 1
	}
	logger.Log.Infof("开始批量处理 %d 个 PDF，并发 %d", len(opts.Paths), workers)
	if opts.ProgressCallback != nil {
		opts.ProgressCallback("starting", 0)
	}

	var (
		docs      []*model.Document
		failed    []string
		mu        sync.Mutex
		wg        sync.WaitGroup
		sem       = make(chan struct{}, workers)
		total     = len(opts.Paths)
		completed = 0
	)

	for _, path := range opts.Paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				mu.Lock()
				failed = append(failed, path)
				mu.Unlock()
				return
			}
			defer func() { <-sem }()

			doc, err := e.ProcessFile(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			completed++
			if err != nil {
				logger.Log.Errorf("处理 PDF 失败 [%s]: %v", path, err)
				failed = append(failed, path)
			} else {
				docs = append(docs, doc)
			}
			if opts.ProgressCallback != nil {
				opts.ProgressCallback(fmt.Sprintf("processed: %s", filepath.Base(path)), completed*100/total)
			}
		}(path)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents processed: %d failed", len(failed))
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ReportID < docs[j].ReportID
	})
	if len(failed) > 0 {
		sort.Strings(failed)
		logger.Log.Warnf("%d 个 PDF 处理失败: %s", len(failed), strings.Join(failed, ", "))
	}
	logger.Log.Infof("批量处理完成: 成功 %d，失败 %d", len(docs), len(failed))
	return docs, nil
}

// CollectPDFs 列出目录下（不递归）的 PDF 文件，按文件名排序
func CollectPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
