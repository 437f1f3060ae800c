package pdfsource

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

// 同一行基线允许的偏差（相对字号）
const (
	baselineTolerance = 0.5
	wordGapRatio      = 0.25
	blockGapRatio     = 0.7
)

type line struct {
	spans    []TextSpan
	baseline float64
	size     float64
	bold     bool
}

func (l *line) bbox() model.Position {
	box := l.spans[0].BBox
	for _, s := range l.spans[1:] {
		box = union(box, s.BBox)
	}
	return box
}

// GroupTexts 把 ledongthuc/pdf 输出的字形序列按行、再按段聚合为 SpanGroup。
// 保持渲染器输出顺序，最终阅读顺序由坐标重新推导。
func GroupTexts(texts []pdf.Text, pageHeight float64) []SpanGroup {
	var lines []*line
	var cur *line

	for _, t := range texts {
		if t.S == "" {
			continue
		}
		size := t.FontSize
		if size <= 0 {
			size = 1
		}
		top := pageHeight - t.Y - size
		box := model.Position{X0: t.X, Y0: top, X1: t.X + t.W, Y1: pageHeight - t.Y}

		if cur == nil || math.Abs(t.Y-cur.baseline) > baselineTolerance*size || t.X+size < cur.spans[len(cur.spans)-1].BBox.X0 {
			cur = &line{baseline: t.Y, size: size, bold: IsBoldFont(t.Font)}
			lines = append(lines, cur)
			cur.spans = append(cur.spans, TextSpan{Text: t.S, FontName: t.Font, FontSize: t.FontSize, BBox: box})
			continue
		}

		last := &cur.spans[len(cur.spans)-1]
		gap := t.X - last.BBox.X1
		if last.FontName == t.Font && last.FontSize == t.FontSize {
			if gap > wordGapRatio*size && !strings.HasSuffix(last.Text, " ") && !strings.HasPrefix(t.S, " ") {
				last.Text += " "
			}
			last.Text += t.S
			last.BBox = union(last.BBox, box)
		} else {
			if gap > wordGapRatio*size && !strings.HasSuffix(last.Text, " ") {
				last.Text += " "
			}
			cur.spans = append(cur.spans, TextSpan{Text: t.S, FontName: t.Font, FontSize: t.FontSize, BBox: box})
		}
		if size > cur.size {
			cur.size = size
		}
	}

	var groups []SpanGroup
	var prev *line
	for _, l := range lines {
		box := l.bbox()
		if prev == nil {
			groups = append(groups, SpanGroup{Lines: [][]TextSpan{l.spans}, BBox: box})
			prev = l
			continue
		}
		g := &groups[len(groups)-1]
		gap := box.Y0 - g.BBox.Y1
		if gap > blockGapRatio*l.size || gap < -l.size*2 || l.bold != prev.bold {
			groups = append(groups, SpanGroup{Lines: [][]TextSpan{l.spans}, BBox: box})
		} else {
			g.Lines = append(g.Lines, l.spans)
			g.BBox = union(g.BBox, box)
		}
		prev = l
	}

	for i := range groups {
		for j := range groups[i].Lines {
			for k := range groups[i].Lines[j] {
				groups[i].Lines[j][k].Text = strings.TrimRight(groups[i].Lines[j][k].Text, " ")
			}
		}
	}
	return groups
}

// IsBoldFont 字体名包含 bold 或 heavy
func IsBoldFont(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "bold") || strings.Contains(n, "heavy")
}

func union(a, b model.Position) model.Position {
	return model.Position{
		X0: math.Min(a.X0, b.X0),
		Y0: math.Min(a.Y0, b.Y0),
		X1: math.Max(a.X1, b.X1),
		Y1: math.Max(a.Y1, b.Y1),
	}
}

// PageText 页面纯文本：块间换行
func PageText(groups []SpanGroup) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, g.Text())
	}
	return strings.Join(parts, "\n")
}
