package xltranslate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/collector"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/models"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/workbook"
)

// Extract lists the translatable units of a workbook without translating
// anything.
func Extract(path string, opts Options) (*models.WorkbookData, error) {
	wb, err := workbook.Open(path, workbook.WithLogger(opts.logger()))
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	col := collector.New(opts.Filters(), opts.logger())
	sheetOrder := wb.Sheets()
	sheets := make(map[string]models.SheetData, len(sheetOrder))
	var all []models.Unit

	for _, sheetName := range sheetOrder {
		var data models.SheetData
		for u := range col.Sheet(wb, sheetName) {
			data.Units = append(data.Units, u)
		}
		all = append(all, data.Units...)

		if opts.ShouldIncludeCharts() {
			charts, err := wb.Charts(sheetName)
			if err == nil {
				data.Charts = charts
			}
		}
		sheets[sheetName] = data
	}

	return &models.WorkbookData{
		BookName:    filepath.Base(path),
		SheetOrder:  sheetOrder,
		Sheets:      sheets,
		UniqueTexts: len(collector.Unique(all)),
	}, nil
}

// OutputPath returns the path translated output for input is written to:
// the input name with suffix appended, numbered when the file exists.
func OutputPath(input, suffix string) string {
	dir := filepath.Dir(input)
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	candidate := filepath.Join(dir, base+suffix+".xlsx")
	for i := 1; fileExists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s%s_%d.xlsx", base, suffix, i))
	}
	return candidate
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
