// Package models defines data structures shared by the workbook driver,
// the unit collector and the translation engine.
package models

// CellKind classifies the stored value of a cell.
type CellKind string

const (
	// CellText is a shared or inline string.
	CellText CellKind = "text"
	// CellNumber is a numeric, date or boolean value.
	CellNumber CellKind = "number"
	// CellOther covers errors and unknown cell types.
	CellOther CellKind = "other"
)

// Cell represents one non-empty cell of a worksheet.
type Cell struct {
	// Ref is the cell reference (e.g., "B3").
	Ref string `json:"ref"`
	// Value is the raw cell value as stored in the sheet.
	Value string `json:"value"`
	// Kind is the value type.
	Kind CellKind `json:"kind"`
	// Formula is the cell formula without the leading '=' (empty if none).
	Formula string `json:"formula,omitempty"`
}

// IsFormula reports whether the cell value is derived from a formula.
func (c Cell) IsFormula() bool {
	return c.Formula != ""
}
