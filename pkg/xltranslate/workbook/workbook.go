// Package workbook reads and writes translatable text in xlsx workbooks.
package workbook

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/address"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/models"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/parser"
	"github.com/xuri/excelize/v2"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not a valid xlsx format.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrUnknownChart indicates a chart address naming no chart of the sheet.
var ErrUnknownChart = errors.New("unknown chart")

// DefaultFont is the font applied to translated cells and chart titles.
const DefaultFont = "Microsoft YaHei"

// Workbook is an open xlsx document. It is not safe for concurrent use.
type Workbook struct {
	path   string
	file   *excelize.File
	charts map[string][]parser.ChartRef
	// derived cell styles, keyed by source style ID
	styles map[int]int
	font   string
	logger *slog.Logger
}

// Option configures a Workbook.
type Option func(*Workbook)

// WithFont sets the font family applied to translated cells and chart
// titles. An empty family leaves fonts untouched.
func WithFont(family string) Option {
	return func(w *Workbook) { w.font = family }
}

// WithLogger sets the logger for non-fatal write problems.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workbook) {
		if l != nil {
			w.logger = l
		}
	}
}

// Open opens the workbook at path and locates its charts.
func Open(path string, opts ...Option) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return nil, fmt.Errorf("%w: %s: expected an .xlsx file", ErrInvalidFormat, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}

	w := &Workbook{
		path:   path,
		file:   f,
		styles: make(map[int]int),
		font:   DefaultFont,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.charts, err = parser.ChartParts(w)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}
	return w, nil
}

// Path returns the path the workbook was opened from.
func (w *Workbook) Path() string {
	return w.path
}

// Sheets returns the sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.file.GetSheetList()
}

// Cells returns the non-empty cells of a sheet.
func (w *Workbook) Cells(sheet string) ([]models.Cell, error) {
	return parser.ExtractCells(w.file, sheet)
}

// Charts returns the charts embedded in a sheet, in drawing order.
func (w *Workbook) Charts(sheet string) ([]models.Chart, error) {
	var charts []models.Chart
	for _, ref := range w.charts[sheet] {
		data, err := w.ReadPart(ref.Part)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		chart, err := parser.ParseChart(data, ref)
		if err != nil {
			return nil, err
		}
		charts = append(charts, *chart)
	}
	return charts, nil
}

// ReadPart returns the raw bytes of a package part, or nil when the part does
// not exist.
func (w *Workbook) ReadPart(name string) ([]byte, error) {
	v, ok := w.file.Pkg.Load(name)
	if !ok {
		return nil, nil
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("part %s: unexpected content type %T", name, v)
	}
	return data, nil
}

func (w *Workbook) writePart(name string, data []byte) {
	w.file.Pkg.Store(name, data)
}

// Apply writes text at addr on sheet. Cells, chart titles and axis titles
// receive the configured font; series names keep their formatting.
func (w *Workbook) Apply(sheet string, addr address.Address, text string) error {
	if !addr.IsChart() {
		return w.setCell(sheet, addr.Ref, text)
	}

	ref, ok := w.chartRef(sheet, addr.Chart)
	if !ok {
		return fmt.Errorf("%w: %q on sheet %q", ErrUnknownChart, addr.Chart, sheet)
	}
	key, err := parser.SlotKeyFor(addr)
	if err != nil {
		return err
	}
	data, err := w.ReadPart(ref.Part)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%w: part %s missing", ErrUnknownChart, ref.Part)
	}
	out, err := parser.RewriteChartText(data, map[parser.SlotKey]string{key: text})
	if err != nil {
		return err
	}
	if w.font != "" && key.Kind != parser.SlotSeries {
		if styled, err := parser.ApplyChartFont(out, key, w.font); err != nil {
			w.logger.Warn("font not applied", "sheet", sheet, "chart", addr.Chart, "error", err)
		} else {
			out = styled
		}
	}
	w.writePart(ref.Part, out)
	return nil
}

func (w *Workbook) chartRef(sheet, name string) (parser.ChartRef, bool) {
	for _, ref := range w.charts[sheet] {
		if ref.Name == name {
			return ref, true
		}
	}
	return parser.ChartRef{}, false
}

func (w *Workbook) setCell(sheet, ref, text string) error {
	if err := w.file.SetCellStr(sheet, ref, text); err != nil {
		return err
	}
	if w.font == "" {
		return nil
	}
	if err := w.applyFont(sheet, ref); err != nil {
		w.logger.Warn("font not applied", "sheet", sheet, "cell", ref, "error", err)
	}
	return nil
}

// applyFont switches the cell to a copy of its style using the configured
// font family. One copy is created per source style.
func (w *Workbook) applyFont(sheet, ref string) error {
	styleID, err := w.file.GetCellStyle(sheet, ref)
	if err != nil {
		return err
	}
	derived, ok := w.styles[styleID]
	if !ok {
		style, err := w.file.GetStyle(styleID)
		if err != nil {
			return err
		}
		if style.Font == nil {
			style.Font = &excelize.Font{}
		}
		style.Font.Family = w.font
		derived, err = w.file.NewStyle(style)
		if err != nil {
			return err
		}
		w.styles[styleID] = derived
	}
	return w.file.SetCellStyle(sheet, ref, ref, derived)
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	return w.file.SaveAs(path)
}

// Close releases the resources held by the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}
