package usecase

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trend_radar/app/display/internal/domain"
	"github.com/iWorld-y/trend_radar/app/display/internal/repo"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/analysis"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/flow"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/storage"
)

var (
	// ErrReportNotFound 报表不存在
	ErrReportNotFound = errors.NotFound("REPORT_NOT_FOUND", "report not found")
	// ErrAnalysisNotFound 报表尚未生成分析
	ErrAnalysisNotFound = errors.NotFound("ANALYSIS_NOT_FOUND", "report has no analysis")
	// ErrPipelineUnavailable 未启用抽取流水线
	ErrPipelineUnavailable = errors.ServiceUnavailable("PIPELINE_UNAVAILABLE", "report pipeline is not configured")
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ReportUseCase 报表业务逻辑
type ReportUseCase struct {
	repo     repo.ReportRepo
	pipeline repo.Pipeline
	log      *log.Helper
}

// NewReportUseCase 创建报表业务逻辑实例；pipeline 可为 nil，此时只读
func NewReportUseCase(repo repo.ReportRepo, pipeline repo.Pipeline, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{repo: repo, pipeline: pipeline, log: log.NewHelper(logger)}
}

// List 分页列出报表摘要
func (uc *ReportUseCase) List(ctx context.Context, page, pageSize int) (*domain.ReportPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	reports, total, err := uc.repo.ListReports(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &domain.ReportPage{Reports: reports, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get 获取完整文档
func (uc *ReportUseCase) Get(ctx context.Context, reportID string) (*model.Document, error) {
	return uc.repo.GetReport(ctx, reportID)
}

// Analysis 只返回分析部分
func (uc *ReportUseCase) Analysis(ctx context.Context, reportID string) (*model.AnalysisExport, error) {
	doc, err := uc.repo.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if doc.OverallAnalysis == nil {
		return nil, ErrAnalysisNotFound
	}
	export := analysis.Export(doc)
	return &export, nil
}

// Charts 按阅读顺序列出全部图表解读
func (uc *ReportUseCase) Charts(ctx context.Context, reportID string) ([]*domain.Chart, error) {
	doc, err := uc.repo.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	charts := make([]*domain.Chart, 0, doc.Metadata.TotalCharts)
	for _, page := range doc.DocumentFlow {
		for _, b := range page.Blocks {
			if b.BlockType != model.BlockChart {
				continue
			}
			charts = append(charts, &domain.Chart{
				SequenceNumber:       b.SequenceNumber,
				PageNumber:           page.PageNumber,
				SeriesName:           page.SeriesName,
				Sector:               string(page.Sector),
				ChartType:            string(b.ChartType()),
				Interpretation:       b.Interpretation,
				TrendDirection:       b.Metadata.TrendDirection,
				CurrentPhase:         b.Metadata.CurrentPhase,
				BusinessImplications: b.Metadata.BusinessImplications,
				KeyPatterns:          b.Metadata.KeyPatterns,
			})
		}
	}
	return charts, nil
}

// Series 按页码列出系列索引
func (uc *ReportUseCase) Series(ctx context.Context, reportID string) ([]*domain.Series, error) {
	doc, err := uc.repo.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	refs := doc.OrderedSeries()
	series := make([]*domain.Series, 0, len(refs))
	for _, ref := range refs {
		insights := ref.Insights
		if insights == nil {
			insights = []string{}
		}
		series = append(series, &domain.Series{
			Name:       ref.Name,
			PageNumber: ref.PageNumber,
			Sector:     string(ref.Sector),
			Summary:    ref.Summary,
			Insights:   insights,
		})
	}
	return series, nil
}

// Upload 保存上传的 PDF 并运行完整流水线；report_id 由文件名决定
func (uc *ReportUseCase) Upload(ctx context.Context, filename string, content []byte) (*model.Document, error) {
	if uc.pipeline == nil {
		return nil, ErrPipelineUnavailable
	}

	name := filepath.Base(filename)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return nil, errors.BadRequest("INVALID_FILE", "only .pdf files are accepted")
	}
	if len(content) == 0 {
		return nil, errors.BadRequest("INVALID_FILE", "empty upload")
	}

	dir, err := os.MkdirTemp("", "trend_radar_upload_")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0600); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Infof("processing upload %s (%d bytes)", name, len(content))
	doc, err := uc.pipeline.ProcessFile(ctx, path)
	if err != nil {
		if stderrors.Is(err, flow.ErrNoPages) {
			return nil, errors.BadRequest("INVALID_FILE", err.Error())
		}
		return nil, err
	}
	return doc, nil
}

// Regenerate 保留内容流，重新生成分析
func (uc *ReportUseCase) Regenerate(ctx context.Context, reportID string) (*model.Document, error) {
	if uc.pipeline == nil {
		return nil, ErrPipelineUnavailable
	}

	doc, err := uc.pipeline.Regenerate(ctx, reportID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Delete 删除报表
func (uc *ReportUseCase) Delete(ctx context.Context, reportID string) error {
	return uc.repo.DeleteReport(ctx, reportID)
}
