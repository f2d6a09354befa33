// Package collector enumerates the translatable text of a workbook.
package collector

import (
	"iter"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/address"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/models"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/parser"
)

// DefaultMinLength is the shortest text, in characters, worth translating.
const DefaultMinLength = 2

// Document is a read-only view of a workbook.
type Document interface {
	Sheets() []string
	Cells(sheet string) ([]models.Cell, error)
	Charts(sheet string) ([]models.Chart, error)
}

// Filters selects which texts become units.
type Filters struct {
	// MinLength is the minimum trimmed text length in characters.
	MinLength int
	// SkipFormulas drops cells whose value is computed by a formula.
	SkipFormulas bool
	// SkipNumeric drops series names that look like numbers.
	SkipNumeric bool
	// IncludeCharts enables chart titles, series names and axis titles.
	IncludeCharts bool
}

// DefaultFilters returns the filters used when none are configured.
func DefaultFilters() Filters {
	return Filters{
		MinLength:     DefaultMinLength,
		SkipFormulas:  true,
		SkipNumeric:   true,
		IncludeCharts: true,
	}
}

// Collector turns documents into translation units.
type Collector struct {
	filters Filters
	logger  *slog.Logger
}

// New creates a Collector. A nil logger discards output.
func New(filters Filters, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Collector{filters: filters, logger: logger}
}

// Collect yields the units of every sheet in workbook order.
func (c *Collector) Collect(doc Document) iter.Seq[models.Unit] {
	return func(yield func(models.Unit) bool) {
		for _, sheet := range doc.Sheets() {
			for u := range c.Sheet(doc, sheet) {
				if !yield(u) {
					return
				}
			}
		}
	}
}

// Sheet yields the units of one sheet: cells in row-major order, then each
// chart's title, series names and axis titles. A component that cannot be
// read is logged and skipped.
func (c *Collector) Sheet(doc Document, sheet string) iter.Seq[models.Unit] {
	return func(yield func(models.Unit) bool) {
		cells, err := doc.Cells(sheet)
		if err != nil {
			c.logger.Warn("cells skipped", "sheet", sheet, "error", err)
		}
		for _, cell := range cells {
			text, ok := c.cellText(cell)
			if !ok {
				continue
			}
			if !yield(models.Unit{Sheet: sheet, Address: address.Cell(cell.Ref), Text: text}) {
				return
			}
		}

		if !c.filters.IncludeCharts {
			return
		}
		charts, err := doc.Charts(sheet)
		if err != nil {
			c.logger.Warn("charts skipped", "sheet", sheet, "error", err)
		}
		for _, chart := range charts {
			for u := range c.chartUnits(sheet, chart) {
				if !yield(u) {
					return
				}
			}
		}
	}
}

func (c *Collector) cellText(cell models.Cell) (string, bool) {
	if cell.Kind != models.CellText {
		return "", false
	}
	if c.filters.SkipFormulas && cell.IsFormula() {
		return "", false
	}
	return c.meaningful(cell.Value)
}

func (c *Collector) chartUnits(sheet string, chart models.Chart) iter.Seq[models.Unit] {
	return func(yield func(models.Unit) bool) {
		emit := func(addr address.Address, raw string) bool {
			text, ok := c.meaningful(raw)
			if !ok {
				return true
			}
			return yield(models.Unit{Sheet: sheet, Address: addr, Text: text})
		}

		if !emit(address.ChartTitle(chart.Name), chart.Title) {
			return
		}
		for _, s := range chart.Series {
			if c.filters.SkipNumeric && parser.IsNumeric(strings.TrimSpace(s.Name)) {
				continue
			}
			if !emit(address.ChartSeries(chart.Name, s.Index), s.Name) {
				return
			}
		}
		if !emit(address.ChartAxis(chart.Name, address.AxisCategory), chart.CategoryAxisTitle) {
			return
		}
		emit(address.ChartAxis(chart.Name, address.AxisValue), chart.ValueAxisTitle)
	}
}

// meaningful trims s and reports whether it is long enough to translate.
func (c *Collector) meaningful(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) < c.filters.MinLength {
		return "", false
	}
	return s, true
}

// Unique returns the distinct texts of units in first-occurrence order.
func Unique(units []models.Unit) []string {
	return models.Texts(units)
}
