// Package output serializes extraction results.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/models"
)

// ToJSON serializes v to JSON. HTML characters are not escaped so that
// cell text such as "<b>" stays readable.
func ToJSON(v any, pretty bool) ([]byte, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return []byte(strings.TrimSuffix(sb.String(), "\n")), nil
}

// SheetToJSON serializes one sheet.
func SheetToJSON(sheet *models.SheetData, pretty bool) ([]byte, error) {
	return ToJSON(sheet, pretty)
}

// WriteSheetFiles writes every sheet of wb to dir as <sheet>.json and
// returns the written paths in sheet order.
func WriteSheetFiles(wb *models.WorkbookData, dir string, pretty bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(wb.SheetOrder))
	for _, name := range wb.SheetOrder {
		sheet := wb.Sheets[name]
		data, err := SheetToJSON(&sheet, pretty)
		if err != nil {
			return paths, fmt.Errorf("sheet %s: %w", name, err)
		}
		path := filepath.Join(dir, FileName(name)+".json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// FileName replaces characters that are not allowed in file names.
func FileName(sheet string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, sheet)
}
