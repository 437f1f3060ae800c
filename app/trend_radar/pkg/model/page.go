package model

import "sort"

// PageType 页面类型
type PageType string

const (
	PageSeries           PageType = "series"
	PageAtAGlance        PageType = "at_a_glance"
	PageExecutiveSummary PageType = "executive_summary"
	PageTableOfContents  PageType = "table_of_contents"
	PageOther            PageType = "other"
)

// PageFlow 单页内容流
type PageFlow struct {
	PageNumber  int            `json:"page_number"`
	PageType    PageType       `json:"page_type"`
	SeriesName  string         `json:"series_name,omitempty"`
	Sector      Sector         `json:"sector,omitempty"`
	Blocks      []ContentBlock `json:"blocks"`
	PageSummary string         `json:"page_summary,omitempty"`
	KeyInsights []string       `json:"key_insights"`
	RawText     string         `json:"raw_text"`
}

// SortBlocks 按 (y0, x0) 升序稳定排序；坐标相同时保留创建顺序
func SortBlocks(blocks []ContentBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i].Position, blocks[j].Position
		if a.Y0 != b.Y0 {
			return a.Y0 < b.Y0
		}
		return a.X0 < b.X0
	})
}

// ChartCount counts chart blocks on the page.
func (p PageFlow) ChartCount() int {
	n := 0
	for _, b := range p.Blocks {
		if b.BlockType == BlockChart {
			n++
		}
	}
	return n
}
