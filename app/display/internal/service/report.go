package service

import (
	"context"
	"io"
	nethttp "net/http"
	"strconv"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/trend_radar/app/display/internal/usecase"
)

const (
	OperationListReports      = "/trend_radar.display.v1.Reports/ListReports"
	OperationGetReport        = "/trend_radar.display.v1.Reports/GetReport"
	OperationGetAnalysis      = "/trend_radar.display.v1.Reports/GetAnalysis"
	OperationListCharts       = "/trend_radar.display.v1.Reports/ListCharts"
	OperationListSeries       = "/trend_radar.display.v1.Reports/ListSeries"
	OperationUploadReport     = "/trend_radar.display.v1.Reports/UploadReport"
	OperationRegenerateReport = "/trend_radar.display.v1.Reports/RegenerateReport"
	OperationDeleteReport     = "/trend_radar.display.v1.Reports/DeleteReport"
)

// DefaultMaxUploadSize 上传 PDF 的默认大小上限
const DefaultMaxUploadSize int64 = 64 << 20

// ReportService 报表 HTTP 接口
type ReportService struct {
	uc            *usecase.ReportUseCase
	maxUploadSize int64
	log           *log.Helper
}

func NewReportService(uc *usecase.ReportUseCase, maxUploadSize int64, logger log.Logger) *ReportService {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &ReportService{
		uc:            uc,
		maxUploadSize: maxUploadSize,
		log:           log.NewHelper(logger),
	}
}

// RegisterRoutes 注册 /api/reports 路由
func (s *ReportService) RegisterRoutes(srv *http.Server) {
	r := srv.Route("/")
	r.GET("/api/reports", s.listReports)
	r.POST("/api/reports", s.uploadReport)
	r.GET("/api/reports/{id}", s.getReport)
	r.DELETE("/api/reports/{id}", s.deleteReport)
	r.GET("/api/reports/{id}/analysis", s.getAnalysis)
	r.GET("/api/reports/{id}/charts", s.listCharts)
	r.GET("/api/reports/{id}/series", s.listSeries)
	r.POST("/api/reports/{id}/regenerate", s.regenerateReport)
}

// handle 经过服务端中间件执行 fn，并以 200 返回结果
func handle(ctx http.Context, operation string, fn func(context.Context) (interface{}, error)) error {
	http.SetOperation(ctx, operation)
	h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		return fn(c)
	})
	out, err := h(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (s *ReportService) listReports(ctx http.Context) error {
	q := ctx.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	return handle(ctx, OperationListReports, func(c context.Context) (interface{}, error) {
		return s.uc.List(c, page, pageSize)
	})
}

func (s *ReportService) getReport(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	return handle(ctx, OperationGetReport, func(c context.Context) (interface{}, error) {
		return s.uc.Get(c, id)
	})
}

func (s *ReportService) getAnalysis(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	return handle(ctx, OperationGetAnalysis, func(c context.Context) (interface{}, error) {
		return s.uc.Analysis(c, id)
	})
}

func (s *ReportService) listCharts(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	return handle(ctx, OperationListCharts, func(c context.Context) (interface{}, error) {
		charts, err := s.uc.Charts(c, id)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"report_id": id, "charts": charts}, nil
	})
}

func (s *ReportService) listSeries(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	return handle(ctx, OperationListSeries, func(c context.Context) (interface{}, error) {
		series, err := s.uc.Series(c, id)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"report_id": id, "series": series}, nil
	})
}

func (s *ReportService) uploadReport(ctx http.Context) error {
	req := ctx.Request()
	req.Body = nethttp.MaxBytesReader(ctx.Response(), req.Body, s.maxUploadSize)
	if err := req.ParseMultipartForm(s.maxUploadSize); err != nil {
		return errors.BadRequest("INVALID_UPLOAD", err.Error())
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		return errors.BadRequest("INVALID_UPLOAD", "multipart field \"file\" is required")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return errors.BadRequest("INVALID_UPLOAD", err.Error())
	}

	return handle(ctx, OperationUploadReport, func(c context.Context) (interface{}, error) {
		doc, err := s.uc.Upload(c, header.Filename, content)
		if err != nil {
			s.log.WithContext(c).Errorf("upload %s failed: %v", header.Filename, err)
			return nil, err
		}
		return doc.Summarize(doc.ExtractionTimestamp), nil
	})
}

func (s *ReportService) regenerateReport(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	return handle(ctx, OperationRegenerateReport, func(c context.Context) (interface{}, error) {
		doc, err := s.uc.Regenerate(c, id)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"report_id":         doc.ReportID,
			"analysis_metadata": doc.AnalysisMetadata,
		}, nil
	})
}

func (s *ReportService) deleteReport(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	return handle(ctx, OperationDeleteReport, func(c context.Context) (interface{}, error) {
		if err := s.uc.Delete(c, id); err != nil {
			return nil, err
		}
		return map[string]interface{}{"report_id": id, "deleted": true}, nil
	})
}
