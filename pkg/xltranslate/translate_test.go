package xltranslate

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/address"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/models"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/translate"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/workbook"
	"github.com/xuri/excelize/v2"
)

// recordingProvider wraps every value as "zh(v)" and records payloads.
type recordingProvider struct {
	mu       sync.Mutex
	payloads []string
	// failures is the number of leading calls that fail.
	failures int
	// omit is left out of every reply.
	omit string
}

func (p *recordingProvider) Complete(ctx context.Context, req translate.Request) (*translate.Response, error) {
	p.mu.Lock()
	p.payloads = append(p.payloads, req.Payload)
	call := len(p.payloads)
	p.mu.Unlock()

	if call <= p.failures {
		return nil, errors.New("service unavailable")
	}
	var batch map[string]string
	if err := json.Unmarshal([]byte(req.Payload), &batch); err != nil {
		return nil, err
	}
	for k, v := range batch {
		if v == p.omit {
			delete(batch, k)
			continue
		}
		batch[k] = "zh(" + v + ")"
	}
	data, _ := json.Marshal(batch)
	return &translate.Response{
		Content: string(data),
		Usage:   &translate.Usage{PromptTokens: 100, CompletionTokens: 50},
	}, nil
}

func newEngine(t *testing.T, p translate.Provider) *translate.Engine {
	t.Helper()
	e, err := translate.New(p, translate.DefaultConfig())
	if err != nil {
		t.Fatalf("translate.New failed: %v", err)
	}
	return e
}

// newBook saves a workbook with three "Hello" cells and a chart titled
// "World" and returns its path.
func newBook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, ref := range []string{"A1", "A2", "A3"} {
		f.SetCellValue("Sheet1", ref, "Hello")
		f.SetCellValue("Sheet1", "B"+ref[1:], i+1)
	}
	err := f.AddChart("Sheet1", "D1", &excelize.Chart{
		Type:   excelize.Col,
		Series: []excelize.ChartSeries{{Values: "Sheet1!$B$1:$B$3"}},
		Title:  []excelize.RichTextRun{{Text: "World"}},
	})
	if err != nil {
		t.Fatalf("AddChart failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	return path
}

func TestTranslateMixedUnits(t *testing.T) {
	input := newBook(t)
	p := &recordingProvider{}
	engine := newEngine(t, p)

	report, err := Translate(context.Background(), engine, input, "", DefaultOptions())
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if len(p.payloads) != 1 || p.payloads[0] != `{"id_0":"Hello","id_1":"World"}` {
		t.Errorf("payloads = %v", p.payloads)
	}
	if report.Output != filepath.Join(filepath.Dir(input), "report_cn.xlsx") {
		t.Errorf("Output = %q", report.Output)
	}
	if report.Units != 4 || report.UniqueTexts != 2 || len(report.ApplyErrors) != 0 {
		t.Errorf("report = %+v", report)
	}
	if len(report.RunID) != 36 {
		t.Errorf("RunID = %q", report.RunID)
	}
	if report.Usage.PromptTokens != 100 || report.Cost <= 0 {
		t.Errorf("usage not reported: %+v, cost %f", report.Usage, report.Cost)
	}

	wb, err := workbook.Open(report.Output)
	if err != nil {
		t.Fatalf("Open output failed: %v", err)
	}
	defer wb.Close()
	cells, _ := wb.Cells("Sheet1")
	for _, c := range cells {
		if c.Kind == models.CellText && c.Value != "zh(Hello)" {
			t.Errorf("%s = %q, expected zh(Hello)", c.Ref, c.Value)
		}
	}
	charts, _ := wb.Charts("Sheet1")
	if len(charts) != 1 || charts[0].Title != "zh(World)" {
		t.Errorf("charts = %+v", charts)
	}
}

func TestTranslateOmittedTextIsSentOnce(t *testing.T) {
	f := excelize.NewFile()
	for _, sheet := range []string{"North", "South", "East"} {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("NewSheet failed: %v", err)
		}
		f.SetCellValue(sheet, "A1", "Hello")
		f.SetCellValue(sheet, "A2", "Total")
	}
	f.DeleteSheet("Sheet1")
	input := filepath.Join(t.TempDir(), "regions.xlsx")
	if err := f.SaveAs(input); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	f.Close()

	p := &recordingProvider{omit: "Hello"}
	opts := DefaultOptions()
	opts.Mode = ModeFull
	report, err := Translate(context.Background(), newEngine(t, p), input, filepath.Join(t.TempDir(), "out.xlsx"), opts)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if len(p.payloads) != 1 {
		t.Errorf("expected a single provider call, got %d: %v", len(p.payloads), p.payloads)
	}
	if report.Units != 6 || len(report.RenamedSheets) != 3 {
		t.Errorf("report = %+v", report)
	}

	out, err := excelize.OpenFile(report.Output)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer out.Close()
	hello, _ := out.GetCellValue("zh(South)", "A1")
	total, _ := out.GetCellValue("zh(South)", "A2")
	if hello != "Hello" || total != "zh(Total)" {
		t.Errorf("South cells = %q, %q", hello, total)
	}
}

func TestTranslateModes(t *testing.T) {
	tests := []struct {
		mode         Mode
		payload      string
		sheet        string
		chartTitle   string
		renamedSheet bool
	}{
		{ModeCells, `{"id_0":"Hello"}`, "Sheet1", "World", false},
		{ModeStandard, `{"id_0":"Hello","id_1":"World"}`, "Sheet1", "zh(World)", false},
		{ModeFull, `{"id_0":"Hello","id_1":"World","id_2":"Sheet1"}`, "zh(Sheet1)", "zh(World)", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			input := newBook(t)
			output := filepath.Join(t.TempDir(), "out.xlsx")
			p := &recordingProvider{}

			opts := DefaultOptions()
			opts.Mode = tt.mode
			report, err := Translate(context.Background(), newEngine(t, p), input, output, opts)
			if err != nil {
				t.Fatalf("Translate failed: %v", err)
			}
			if len(p.payloads) != 1 || p.payloads[0] != tt.payload {
				t.Errorf("payloads = %v, expected [%s]", p.payloads, tt.payload)
			}
			if got := report.RenamedSheets["Sheet1"]; (got != "") != tt.renamedSheet {
				t.Errorf("RenamedSheets = %v", report.RenamedSheets)
			}

			wb, err := workbook.Open(output)
			if err != nil {
				t.Fatalf("Open output failed: %v", err)
			}
			defer wb.Close()
			if sheets := wb.Sheets(); len(sheets) != 1 || sheets[0] != tt.sheet {
				t.Errorf("Sheets() = %v, expected [%s]", sheets, tt.sheet)
			}
			charts, _ := wb.Charts(tt.sheet)
			if len(charts) != 1 || charts[0].Title != tt.chartTitle {
				t.Errorf("charts = %+v", charts)
			}
		})
	}
}

func TestTranslateProviderFailureAbortsBeforeSave(t *testing.T) {
	input := newBook(t)
	output := filepath.Join(t.TempDir(), "out.xlsx")
	p := &recordingProvider{failures: 1}

	_, err := Translate(context.Background(), newEngine(t, p), input, output, DefaultOptions())
	var apiErr *translate.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *translate.APIError, got %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("output must not be written after a failed run")
	}
}

func TestTranslateRetriesFailedPass(t *testing.T) {
	input := newBook(t)
	p := &recordingProvider{failures: 1}

	opts := DefaultOptions()
	opts.Attempts = 2
	report, err := Translate(context.Background(), newEngine(t, p), input, filepath.Join(t.TempDir(), "out.xlsx"), opts)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if len(p.payloads) != 2 {
		t.Errorf("expected 2 provider calls, got %d", len(p.payloads))
	}
	if report.Units != 4 {
		t.Errorf("Units = %d", report.Units)
	}
}

func TestTranslateCancelledIsNotRetried(t *testing.T) {
	input := newBook(t)
	p := &recordingProvider{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.Attempts = 3
	_, err := Translate(ctx, newEngine(t, p), input, filepath.Join(t.TempDir(), "out.xlsx"), opts)
	if !errors.Is(err, ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
	if len(p.payloads) != 0 {
		t.Errorf("expected no provider calls, got %d", len(p.payloads))
	}
}

func TestTranslateMissingInput(t *testing.T) {
	_, err := Translate(context.Background(), newEngine(t, &recordingProvider{}), filepath.Join(t.TempDir(), "nope.xlsx"), "", DefaultOptions())
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestExtract(t *testing.T) {
	data, err := Extract(newBook(t), DefaultOptions())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if data.BookName != "report.xlsx" || len(data.SheetOrder) != 1 {
		t.Errorf("BookName = %q, SheetOrder = %v", data.BookName, data.SheetOrder)
	}
	sheet := data.Sheets["Sheet1"]
	if len(sheet.Units) != 4 || data.UniqueTexts != 2 {
		t.Fatalf("units = %v, unique = %d", sheet.Units, data.UniqueTexts)
	}
	if sheet.Units[3].Address.Kind != address.KindChartTitle {
		t.Errorf("expected the chart title last, got %v", sheet.Units[3])
	}
	if len(sheet.Charts) != 1 {
		t.Errorf("expected 1 chart, got %d", len(sheet.Charts))
	}

	opts := DefaultOptions()
	opts.Mode = ModeCells
	data, err = Extract(newBook(t), opts)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if s := data.Sheets["Sheet1"]; len(s.Units) != 3 || len(s.Charts) != 0 {
		t.Errorf("cells mode extracted %d units and %d charts", len(s.Units), len(s.Charts))
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "book.xlsx")

	if got := OutputPath(input, "_cn"); got != filepath.Join(dir, "book_cn.xlsx") {
		t.Errorf("OutputPath = %q", got)
	}
	os.WriteFile(filepath.Join(dir, "book_cn.xlsx"), nil, 0o644)
	os.WriteFile(filepath.Join(dir, "book_cn_1.xlsx"), nil, 0o644)
	if got := OutputPath(input, "_cn"); got != filepath.Join(dir, "book_cn_2.xlsx") {
		t.Errorf("OutputPath with existing files = %q", got)
	}
}

func TestOptions(t *testing.T) {
	yes, no := true, false
	empty := ""
	tests := []struct {
		name        string
		opts        Options
		charts      bool
		sheetNames  bool
		font        string
		skipFormula bool
	}{
		{"cells", Options{Mode: ModeCells}, false, false, workbook.DefaultFont, true},
		{"standard", Options{Mode: ModeStandard}, true, false, workbook.DefaultFont, true},
		{"full", Options{Mode: ModeFull}, true, true, workbook.DefaultFont, true},
		{"overrides", Options{Mode: ModeCells, IncludeCharts: &yes, TranslateSheetNames: &yes, Font: &empty, KeepFormulas: true}, true, true, "", false},
		{"full without names", Options{Mode: ModeFull, TranslateSheetNames: &no}, true, false, workbook.DefaultFont, true},
	}
	for _, tt := range tests {
		if got := tt.opts.ShouldIncludeCharts(); got != tt.charts {
			t.Errorf("%s: ShouldIncludeCharts() = %v", tt.name, got)
		}
		if got := tt.opts.ShouldTranslateSheetNames(); got != tt.sheetNames {
			t.Errorf("%s: ShouldTranslateSheetNames() = %v", tt.name, got)
		}
		if got := tt.opts.FontFamily(); got != tt.font {
			t.Errorf("%s: FontFamily() = %q", tt.name, got)
		}
		if f := tt.opts.Filters(); f.SkipFormulas != tt.skipFormula || f.IncludeCharts != tt.charts {
			t.Errorf("%s: Filters() = %+v", tt.name, f)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"cells", "standard", "full"} {
		if m, err := ParseMode(s); err != nil || string(m) != s {
			t.Errorf("ParseMode(%q) = %q, %v", s, m, err)
		}
	}
	if _, err := ParseMode("verbose"); err == nil {
		t.Error("ParseMode(verbose) should fail")
	}
}
