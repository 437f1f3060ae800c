package data

import (
	"context"
	"errors"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trend_radar/app/display/internal/domain"
	"github.com/iWorld-y/trend_radar/app/display/internal/repo"
	"github.com/iWorld-y/trend_radar/app/display/internal/usecase"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/storage"
)

type reportRepo struct {
	data *Data
	log  *log.Helper
}

func NewReportRepo(data *Data, logger log.Logger) repo.ReportRepo {
	return &reportRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *reportRepo) ListReports(ctx context.Context, page, pageSize int) ([]*domain.ReportSummary, int, error) {
	offset := (page - 1) * pageSize

	rows, total, err := r.data.store.ListDocuments(ctx, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]*domain.ReportSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.NewReportSummary(row))
	}
	return summaries, total, nil
}

func (r *reportRepo) GetReport(ctx context.Context, reportID string) (*model.Document, error) {
	doc, err := r.data.store.GetDocument(ctx, reportID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, usecase.ErrReportNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (r *reportRepo) DeleteReport(ctx context.Context, reportID string) error {
	if err := r.data.store.DeleteDocument(ctx, reportID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return usecase.ErrReportNotFound
		}
		return err
	}
	r.log.WithContext(ctx).Infof("report deleted: %s", reportID)
	return nil
}
