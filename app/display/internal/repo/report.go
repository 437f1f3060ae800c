package repo

import (
	"context"

	"github.com/iWorld-y/trend_radar/app/display/internal/domain"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

// ReportRepo 报表仓库接口
type ReportRepo interface {
	// ListReports 分页获取报表摘要列表，按更新时间倒序
	ListReports(ctx context.Context, page, pageSize int) ([]*domain.ReportSummary, int, error)
	// GetReport 根据 report_id 获取完整文档
	GetReport(ctx context.Context, reportID string) (*model.Document, error)
	// DeleteReport 删除报表
	DeleteReport(ctx context.Context, reportID string) error
}

// Pipeline 抽取与分析流水线
type Pipeline interface {
	ProcessFile(ctx context.Context, path string) (*model.Document, error)
	Regenerate(ctx context.Context, reportID string) (*model.Document, error)
}
