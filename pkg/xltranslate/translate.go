package xltranslate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-kratos/kit/retry"
	"github.com/google/uuid"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/collector"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/models"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/parser"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/translate"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/workbook"
)

// Report summarises a translation run.
type Report struct {
	// RunID identifies the run in log records.
	RunID  string `json:"run_id"`
	Input  string `json:"input"`
	Output string `json:"output"`
	// Sheets is the number of sheets processed.
	Sheets int `json:"sheets"`
	// Units is the number of locations written.
	Units int `json:"units"`
	// UniqueTexts is the number of distinct source strings, sheet names included.
	UniqueTexts int `json:"unique_texts"`
	// RenamedSheets maps original sheet names to their new names.
	RenamedSheets map[string]string `json:"renamed_sheets,omitempty"`
	Usage         translate.Usage   `json:"usage"`
	Cost          float64           `json:"cost"`
	Duration      time.Duration     `json:"duration"`
	// ApplyErrors lists locations whose translation could not be written.
	ApplyErrors []*ApplyError `json:"-"`
}

// Translate translates the workbook at input and saves the result to output.
// An empty output selects OutputPath(input, DefaultSuffix). The text of the
// whole workbook is translated before anything is written; locations that
// cannot be written are reported in Report.ApplyErrors. Any other failure
// aborts the run before the output is saved.
func Translate(ctx context.Context, engine *translate.Engine, input, output string, opts Options) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := opts.logger().With("run", runID)

	wb, err := workbook.Open(input,
		workbook.WithFont(opts.FontFamily()),
		workbook.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	col := collector.New(opts.Filters(), logger)
	sheets := wb.Sheets()
	perSheet := make(map[string][]models.Unit, len(sheets))
	var all []models.Unit
	for u := range col.Collect(wb) {
		perSheet[u.Sheet] = append(perSheet[u.Sheet], u)
		all = append(all, u)
	}

	texts := collector.Unique(all)
	var sheetNames []string
	if opts.ShouldTranslateSheetNames() {
		sheetNames = translatableSheetNames(sheets)
		texts = append(texts, sheetNames...)
	}
	logger.Info("collected workbook text", "sheets", len(sheets), "units", len(all), "texts", len(texts))

	r := retry.New(opts.attempts(), retry.WithRetryable(func(err error) bool {
		return !errors.Is(err, translate.ErrCancelled)
	}))
	err = r.Do(ctx, func(ctx context.Context) error {
		return engine.Ensure(ctx, texts)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ErrCancelled) {
			err = fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
		}
		return nil, err
	}

	report := &Report{
		RunID:  runID,
		Input:  input,
		Sheets: len(sheets),
	}
	for _, sheet := range sheets {
		// Texts the provider left out keep their source text; they are not
		// sent again.
		for _, u := range perSheet[sheet] {
			if err := wb.Apply(sheet, u.Address, engine.Lookup(u.Text)); err != nil {
				logger.Warn("translation not applied", "sheet", sheet, "address", u.Address.String(), "error", err)
				report.ApplyErrors = append(report.ApplyErrors, NewApplyError(sheet, u.Address, err))
				continue
			}
			report.Units++
		}
	}

	if len(sheetNames) > 0 {
		report.RenamedSheets = make(map[string]string)
		for _, sheet := range sheetNames {
			renamed, err := wb.RenameSheet(sheet, engine.Lookup(sheet))
			if err != nil {
				return nil, err
			}
			if renamed != sheet {
				report.RenamedSheets[sheet] = renamed
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	if output == "" {
		output = OutputPath(input, DefaultSuffix)
	}
	if err := wb.SaveAs(output); err != nil {
		return nil, fmt.Errorf("save %s: %w", filepath.Base(output), err)
	}

	report.Output = output
	report.UniqueTexts = len(texts)
	report.Usage = engine.Usage()
	report.Cost = engine.Cost()
	report.Duration = time.Since(start)
	logger.Info("workbook translated", "output", output, "units", report.Units, "cost", report.Cost)
	return report, nil
}

// translatableSheetNames returns the sheet names worth translating.
func translatableSheetNames(sheets []string) []string {
	var names []string
	for _, s := range sheets {
		if trimmed := strings.TrimSpace(s); trimmed == "" || parser.IsNumeric(trimmed) {
			continue
		}
		names = append(names, s)
	}
	return names
}
