package analysis

import "github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"

// Apply 返回携带分析结果的新文档；document_flow 与原文档共享，不做修改
func Apply(doc *model.Document, res *Result) *model.Document {
	out := *doc
	overall := res.Overall
	meta := res.Metadata
	out.OverallAnalysis = &overall
	out.SectorAnalyses = res.Sectors
	out.AnalysisMetadata = &meta
	return &out
}

// Export 仅导出分析部分
func Export(doc *model.Document) model.AnalysisExport {
	sectors := doc.SectorAnalyses
	if sectors == nil {
		sectors = map[model.Sector]model.SectorAnalysis{}
	}
	return model.AnalysisExport{
		ReportID:         doc.ReportID,
		PDFFilename:      doc.PDFFilename,
		ReportPeriod:     doc.ReportPeriod,
		OverallAnalysis:  doc.OverallAnalysis,
		SectorAnalyses:   sectors,
		AnalysisMetadata: doc.AnalysisMetadata,
	}
}
