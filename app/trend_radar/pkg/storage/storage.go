package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/config"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

var (
	// ErrNotFound 报告不存在
	ErrNotFound = errors.New("report not found")
	// ErrInvalidDocument 文档不满足写入条件，读取时无法还原
	ErrInvalidDocument = errors.New("invalid document")
)

// DefaultListLimit 列表默认分页大小
const DefaultListLimit = 20

// Store 报告文档的持久化接口，以 report_id 为主键，重复写入即覆盖
type Store interface {
	UpsertDocument(ctx context.Context, doc *model.Document) error
	GetDocument(ctx context.Context, reportID string) (*model.Document, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]model.ReportSummary, int, error)
	DeleteDocument(ctx context.Context, reportID string) error
	Close() error
}

// New 按 driver 创建存储；driver 为空或 none 时返回 nil，调用方只写本地 JSON
func New(cfg config.DBConfig) (Store, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "postgres":
		s, err := NewPostgres(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "badger":
		s, err := NewBadger(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", cfg.Driver)
	}
}

// validateDocument 写入前校验；分析部分按读取时的同一套规则检查
func validateDocument(doc *model.Document) error {
	if doc == nil || doc.ReportID == "" {
		return fmt.Errorf("%w: report id is required", ErrInvalidDocument)
	}
	if doc.OverallAnalysis != nil {
		if err := doc.OverallAnalysis.Validate(); err != nil {
			return fmt.Errorf("%w: %s overall analysis: %v", ErrInvalidDocument, doc.ReportID, err)
		}
	}
	for sector, a := range doc.SectorAnalyses {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%w: %s %s sector analysis: %v", ErrInvalidDocument, doc.ReportID, sector, err)
		}
	}
	return nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// removeNullBytes PostgreSQL 的 TEXT/JSONB 不接受 NUL，PDF 抽取文本里偶尔会带上
func removeNullBytes(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte(`\u0000`), nil)
}
