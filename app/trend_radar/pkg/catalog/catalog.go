package catalog

import (
	"regexp"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
)

// Pattern 系列名称模式及其所属板块
type Pattern struct {
	Expr   *regexp.Regexp
	Sector model.Sector
}

// 顺序即优先级：多个模式同时命中时取列表中靠前者
var patterns = compile([]struct {
	expr   string
	sector model.Sector
}{
	// core
	{`US Industrial Production`, model.SectorCore},
	{`US Nondefense Capital Goods New Orders`, model.SectorCore},
	{`US Private Sector Employment`, model.SectorCore},
	{`US Total Retail Sales`, model.SectorCore},
	{`US Wholesale Trade`, model.SectorCore},
	{`ITR Leading Indicator`, model.SectorCore},
	{`US Total Industry Capacity Utilization`, model.SectorCore},
	{`US OECD Leading Indicator`, model.SectorCore},
	{`US ISM PMI`, model.SectorCore},
	{`ITR Retail Sales Leading Indicator`, model.SectorCore},

	// financial
	{`US Stock Prices|S&P 500`, model.SectorFinancial},
	{`US Government.*Bond Yields`, model.SectorFinancial},
	{`US Natural Gas Spot Prices`, model.SectorFinancial},
	{`US Crude Oil Spot Prices`, model.SectorFinancial},
	{`US Steel Scrap Producer Price`, model.SectorFinancial},
	{`US Consumer Price Index`, model.SectorFinancial},
	{`US Producer Price Index`, model.SectorFinancial},

	// construction
	{`US Single-Unit Housing Starts`, model.SectorConstruction},
	{`US Multi-Unit Housing Starts`, model.SectorConstruction},
	{`US Private Office Construction`, model.SectorConstruction},
	{`US Total Education Construction`, model.SectorConstruction},
	{`US Total Hospital Construction`, model.SectorConstruction},
	{`US Private Manufacturing Construction`, model.SectorConstruction},
	{`US Private.*Retail Construction`, model.SectorConstruction},
	{`US Private Warehouse Construction`, model.SectorConstruction},
	{`US Public Water.*Sewer.*Construction`, model.SectorConstruction},

	// manufacturing
	{`US Metalworking Machinery`, model.SectorManufacturing},
	{`US Machinery New Orders`, model.SectorManufacturing},
	{`US Construction Machinery`, model.SectorManufacturing},
	{`US Electrical Equipment`, model.SectorManufacturing},
	{`US Computers.*Electronics`, model.SectorManufacturing},
	{`US Defense Capital Goods`, model.SectorManufacturing},
	{`North America Light Vehicle Production`, model.SectorManufacturing},
	{`US Oil.*Gas Extraction`, model.SectorManufacturing},
	{`US Mining Production`, model.SectorManufacturing},
	{`US Chemicals.*Chemical Products`, model.SectorManufacturing},
	{`US Civilian Aircraft`, model.SectorManufacturing},
	{`US Medical Equipment`, model.SectorManufacturing},
	{`US Heavy-Duty Truck`, model.SectorManufacturing},
	{`US Food Production`, model.SectorManufacturing},
})

func compile(defs []struct {
	expr   string
	sector model.Sector
}) []Pattern {
	out := make([]Pattern, 0, len(defs))
	for _, d := range defs {
		out = append(out, Pattern{Expr: regexp.MustCompile(`(?i)` + d.expr), Sector: d.sector})
	}
	return out
}

// Patterns 返回按优先级排列的模式表副本
func Patterns() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}

// Identify 在文本中查找第一个命中的系列模式，返回命中的原文作为系列名
func Identify(text string) (name string, sector model.Sector, ok bool) {
	for _, p := range patterns {
		if m := p.Expr.FindString(text); m != "" {
			return m, p.Sector, true
		}
	}
	return "", "", false
}

var leadingIndicators = map[model.Sector][]string{
	model.SectorCore:          {"ITR Leading Indicator", "US ISM PMI", "US OECD Leading Indicator"},
	model.SectorFinancial:     {"US Stock Prices", "US Government Bond Yields"},
	model.SectorConstruction:  {"US Single-Unit Housing Starts", "US Multi-Unit Housing Starts"},
	model.SectorManufacturing: {"US Metalworking Machinery", "US Machinery New Orders"},
}

// LeadingIndicators 板块已知的领先指标
func LeadingIndicators(sector model.Sector) []string {
	return append([]string(nil), leadingIndicators[sector]...)
}

var correlations = map[model.Sector][]model.SectorCorrelation{
	model.SectorCore: {{
		RelatedSector: model.SectorManufacturing,
		Relationship:  "leading",
		LagMonths:     3,
		Strength:      "strong",
		Description:   "Core indicators lead manufacturing activity",
	}},
	model.SectorFinancial: {{
		RelatedSector: model.SectorCore,
		Relationship:  "leading",
		LagMonths:     6,
		Strength:      "moderate",
		Description:   "Financial markets anticipate economic trends",
	}},
	model.SectorConstruction: {{
		RelatedSector: model.SectorFinancial,
		Relationship:  "lagging",
		LagMonths:     9,
		Strength:      "moderate",
		Description:   "Construction follows interest rate changes",
	}},
	model.SectorManufacturing: {{
		RelatedSector: model.SectorCore,
		Relationship:  "lagging",
		LagMonths:     3,
		Strength:      "strong",
		Description:   "Manufacturing responds to overall economic conditions",
	}},
}

// Correlations 板块间静态关联表（领域先验，非数据计算）
func Correlations(sector model.Sector) []model.SectorCorrelation {
	return append([]model.SectorCorrelation(nil), correlations[sector]...)
}
