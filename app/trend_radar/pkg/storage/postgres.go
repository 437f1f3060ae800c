package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/config"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

// Postgres 文档以 JSONB 整体存储，列表字段冗余成普通列
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgres(cfg config.DBConfig) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := NewPostgresFromDB(db)
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// NewPostgresFromDB 使用已有连接，不建表
func NewPostgresFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

func (s *Postgres) Close() error {
	return s.db.Close()
}

func (s *Postgres) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS flow_documents (
			report_id TEXT PRIMARY KEY,
			pdf_filename TEXT NOT NULL,
			report_period TEXT,
			document JSONB NOT NULL,
			total_pages INTEGER,
			total_charts INTEGER,
			series_count INTEGER,
			has_analysis BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_flow_documents_updated_at ON flow_documents (updated_at DESC)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}

func (s *Postgres) UpsertDocument(ctx context.Context, doc *model.Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", doc.ReportID, err)
	}
	data = removeNullBytes(data)

	now := s.now()
	sum := doc.Summarize(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO flow_documents (report_id, pdf_filename, report_period, document, total_pages, total_charts, series_count, has_analysis, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (report_id) DO UPDATE SET
			pdf_filename = EXCLUDED.pdf_filename,
			report_period = EXCLUDED.report_period,
			document = EXCLUDED.document,
			total_pages = EXCLUDED.total_pages,
			total_charts = EXCLUDED.total_charts,
			series_count = EXCLUDED.series_count,
			has_analysis = EXCLUDED.has_analysis,
			updated_at = EXCLUDED.updated_at`,
		sum.ReportID, sum.PDFFilename, sum.ReportPeriod, string(data),
		sum.TotalPages, sum.TotalCharts, sum.SeriesCount, sum.HasAnalysis, now)
	if err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: %v", err, rerr)
		}
		return fmt.Errorf("failed to upsert document %s: %w", doc.ReportID, err)
	}

	return tx.Commit()
}

func (s *Postgres) GetDocument(ctx context.Context, reportID string) (*model.Document, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM flow_documents WHERE report_id = $1`, reportID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document %s: %w", reportID, err)
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", reportID, err)
	}
	return &doc, nil
}

func (s *Postgres) ListDocuments(ctx context.Context, limit, offset int) ([]model.ReportSummary, int, error) {
	limit, offset = normalizePage(limit, offset)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flow_documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT report_id, pdf_filename, report_period, total_pages, total_charts, series_count, has_analysis, updated_at
		FROM flow_documents
		ORDER BY updated_at DESC, report_id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	summaries := make([]model.ReportSummary, 0, limit)
	for rows.Next() {
		var (
			sum    model.ReportSummary
			period sql.NullString
		)
		if err := rows.Scan(&sum.ReportID, &sum.PDFFilename, &period, &sum.TotalPages,
			&sum.TotalCharts, &sum.SeriesCount, &sum.HasAnalysis, &sum.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan document row: %w", err)
		}
		sum.ReportPeriod = period.String
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

func (s *Postgres) DeleteDocument(ctx context.Context, reportID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM flow_documents WHERE report_id = $1`, reportID)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", reportID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
