package parser

import (
	"strconv"
	"strings"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/models"
	"github.com/xuri/excelize/v2"
)

// ExtractCells extracts the non-empty cells of a sheet in row-major order,
// with their value type and formula.
func ExtractCells(f *excelize.File, sheetName string) ([]models.Cell, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	var result []models.Cell
	for rowIdx, row := range rows {
		for colIdx, cellValue := range row {
			if cellValue == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheetName, ref)
			if err != nil {
				return nil, err
			}
			formula, err := f.GetCellFormula(sheetName, ref)
			if err != nil {
				return nil, err
			}
			result = append(result, models.Cell{
				Ref:     ref,
				Value:   cellValue,
				Kind:    cellKind(cellType, cellValue),
				Formula: formula,
			})
		}
	}

	return result, nil
}

// cellKind maps the stored cell type to a CellKind. Cells without an explicit
// type are numbers unless their value does not parse as one.
func cellKind(t excelize.CellType, value string) models.CellKind {
	switch t {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return models.CellText
	case excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeBool:
		return models.CellNumber
	case excelize.CellTypeUnset:
		if _, ok := parseValue(value).(string); ok {
			return models.CellText
		}
		return models.CellNumber
	default:
		return models.CellOther
	}
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
// Only decimal literals are numbers; "NaN" and "Inf" stay strings.
func parseValue(s string) interface{} {
	if strings.Trim(s, "0123456789+-.eE") != "" {
		return s
	}
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// Return as string
	return s
}

// IsNumeric reports whether s parses as a number.
func IsNumeric(s string) bool {
	_, ok := parseValue(s).(string)
	return !ok
}
