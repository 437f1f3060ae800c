package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/logger"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

// badgerRecord 本地库中的一条报告记录，文档本体为 JSON
type badgerRecord struct {
	ReportID     string `badgerhold:"key"`
	PDFFilename  string
	ReportPeriod string
	TotalPages   int
	TotalCharts  int
	SeriesCount  int
	HasAnalysis  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Document     []byte
}

// Badger 单机模式下的嵌入式存储
type Badger struct {
	store *badgerhold.Store
	now   func() time.Time
}

func NewBadger(path string) (*Badger, error) {
	if path == "" {
		return nil, fmt.Errorf("badger path is required")
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Encoder = json.Marshal
	options.Decoder = json.Unmarshal
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Log.Debugf("Badger 存储已打开: %s", path)
	return &Badger{store: store, now: time.Now}, nil
}

func (s *Badger) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func (s *Badger) UpsertDocument(ctx context.Context, doc *model.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", doc.ReportID, err)
	}

	now := s.now()
	sum := doc.Summarize(now)
	rec := badgerRecord{
		ReportID:     sum.ReportID,
		PDFFilename:  sum.PDFFilename,
		ReportPeriod: sum.ReportPeriod,
		TotalPages:   sum.TotalPages,
		TotalCharts:  sum.TotalCharts,
		SeriesCount:  sum.SeriesCount,
		HasAnalysis:  sum.HasAnalysis,
		CreatedAt:    now,
		UpdatedAt:    now,
		Document:     data,
	}

	var existing badgerRecord
	switch err := s.store.Get(doc.ReportID, &existing); {
	case err == nil:
		rec.CreatedAt = existing.CreatedAt
	case !errors.Is(err, badgerhold.ErrNotFound):
		return fmt.Errorf("failed to load document %s: %w", doc.ReportID, err)
	}

	if err := s.store.Upsert(doc.ReportID, &rec); err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.ReportID, err)
	}
	return nil
}

func (s *Badger) GetDocument(ctx context.Context, reportID string) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec badgerRecord
	if err := s.store.Get(reportID, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document %s: %w", reportID, err)
	}

	var doc model.Document
	if err := json.Unmarshal(rec.Document, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", reportID, err)
	}
	return &doc, nil
}

func (s *Badger) ListDocuments(ctx context.Context, limit, offset int) ([]model.ReportSummary, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	limit, offset = normalizePage(limit, offset)

	var recs []badgerRecord
	if err := s.store.Find(&recs, nil); err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].UpdatedAt.Equal(recs[j].UpdatedAt) {
			return recs[i].UpdatedAt.After(recs[j].UpdatedAt)
		}
		return recs[i].ReportID < recs[j].ReportID
	})

	total := len(recs)
	summaries := []model.ReportSummary{}
	for i := offset; i < total && len(summaries) < limit; i++ {
		r := recs[i]
		summaries = append(summaries, model.ReportSummary{
			ReportID:     r.ReportID,
			PDFFilename:  r.PDFFilename,
			ReportPeriod: r.ReportPeriod,
			TotalPages:   r.TotalPages,
			TotalCharts:  r.TotalCharts,
			SeriesCount:  r.SeriesCount,
			HasAnalysis:  r.HasAnalysis,
			UpdatedAt:    r.UpdatedAt,
		})
	}
	return summaries, total, nil
}

func (s *Badger) DeleteDocument(ctx context.Context, reportID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.Delete(reportID, &badgerRecord{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete document %s: %w", reportID, err)
	}
	return nil
}
