package flow

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

var (
	forecastDataPattern = regexp.MustCompile(`20\d{2}:\s*\n?\s*12/12`)
	yearMarkerPattern   = regexp.MustCompile(`(20\d{2}):`)
	ratePattern         = regexp.MustCompile(`(-?\d+\.?\d*)%`)
	valuePattern        = regexp.MustCompile(`\n\s*\$?([\d,]+\.?\d*)\s*\n`)
	hyphenItemPattern   = regexp.MustCompile(`(?m)^\s*-\s*`)
)

const forecastSnippetLen = 200

// ParseForecasts 按 "20xx:" 标记截取其后 200 字符，解析 12/12 变化率与数值；每年只取第一次出现
func ParseForecasts(text string) []model.ForecastPoint {
	seen := make(map[int]bool)
	var out []model.ForecastPoint

	for _, loc := range yearMarkerPattern.FindAllStringSubmatchIndex(text, -1) {
		year, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil || seen[year] {
			continue
		}
		seen[year] = true

		end := loc[0] + forecastSnippetLen
		if end > len(text) {
			end = len(text)
		}
		snippet := text[loc[0]:end]

		point := model.ForecastPoint{Year: year}
		if m := ratePattern.FindStringSubmatch(snippet); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				point.Rate1212 = &v
			}
		}
		if m := valuePattern.FindStringSubmatch(snippet); m != nil {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
				point.Value = &v
			}
		}
		out = append(out, point)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// SplitBullets 拆分项目符号文本：优先按 •，其次按行首 -，否则整段作为一条
func SplitBullets(text string) []string {
	var parts []string
	switch {
	case strings.Contains(text, "•"):
		parts = strings.Split(text, "•")
	case strings.HasPrefix(strings.TrimSpace(text), "-"):
		parts = hyphenItemPattern.Split(text, -1)
	default:
		parts = []string{text}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
