package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

const (
	shortDocumentPages = 5
	missingPageLimit   = 5
	missingPageAllowed = 2
)

// ValidationResult 文档结构检查结果；Issues 为空时 Valid
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// Validate 文档结构检查，纯函数
func Validate(doc *model.Document) ValidationResult {
	issues := []string{}

	if doc == nil || len(doc.DocumentFlow) == 0 {
		issues = append(issues, "Empty document_flow - no pages extracted")
	} else if n := len(doc.DocumentFlow); n < shortDocumentPages {
		issues = append(issues, fmt.Sprintf("Very short document (%d pages) - analysis may be limited", n))
	}

	if doc != nil {
		if missing := missingPages(doc.DocumentFlow, missingPageLimit); len(missing) > missingPageAllowed {
			issues = append(issues, fmt.Sprintf("Missing pages detected: %s...", formatInts(missing)))
		}
	}

	var series map[string]model.SeriesEntry
	if doc != nil {
		series = doc.SeriesIndex
	}
	if len(series) == 0 {
		issues = append(issues, "No series data found")
	}

	present := make(map[model.Sector]bool)
	for _, entry := range series {
		present[entry.Sector] = true
	}
	var absent []string
	for _, s := range model.Sectors {
		if !present[s] {
			absent = append(absent, string(s))
		}
	}
	if len(absent) > 0 {
		issues = append(issues, "Missing sectors: "+strings.Join(absent, ", "))
	}

	if doc != nil && len(doc.DocumentFlow) > 0 && !hasPageSummary(doc.DocumentFlow) {
		issues = append(issues, "No page summaries found - report may be in unexpected format")
	}

	return ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

// missingPages 按升序列出相邻页码之间的缺口，收集满 limit 个即停止
func missingPages(pages []model.PageFlow, limit int) []int {
	if len(pages) == 0 {
		return nil
	}
	numbers := make([]int, 0, len(pages))
	for _, p := range pages {
		numbers = append(numbers, p.PageNumber)
	}
	sort.Ints(numbers)

	var missing []int
	for i := 1; i < len(numbers); i++ {
		for n := numbers[i-1] + 1; n < numbers[i]; n++ {
			if len(missing) == limit {
				return missing
			}
			missing = append(missing, n)
		}
	}
	return missing
}

func hasPageSummary(pages []model.PageFlow) bool {
	for _, p := range pages {
		if p.PageSummary != "" {
			return true
		}
	}
	return false
}

func formatInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
