package workbook

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/parser"
)

// MaxSheetNameLength is the longest sheet name Excel accepts, in characters.
const MaxSheetNameLength = 31

// SanitizeSheetName removes the characters Excel forbids in sheet names and
// caps the result at MaxSheetNameLength characters.
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	return truncateRunes(name, MaxSheetNameLength)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}

// RenameSheet renames a sheet to the sanitised form of name, adding a numeric
// suffix when another sheet already uses it. References to the sheet held by
// cell formulas, chart parts and defined names (print areas included) are
// updated. It returns the name actually
// used; a name that sanitises to nothing leaves the sheet unchanged.
func (w *Workbook) RenameSheet(old, name string) (string, error) {
	target := w.uniqueSheetName(old, SanitizeSheetName(name))
	if target == "" || strings.EqualFold(target, old) {
		return old, nil
	}

	formulas, err := w.formulasReferencing(old)
	if err != nil {
		return old, err
	}
	if err := w.file.SetSheetName(old, target); err != nil {
		return old, fmt.Errorf("rename sheet %q: %w", old, err)
	}

	for _, fc := range formulas {
		sheet := fc.sheet
		if sheet == old {
			sheet = target
		}
		formula := parser.ReplaceSheetRef(fc.formula, old, target)
		// clear first so shared formulas become standalone
		if err := w.file.SetCellFormula(sheet, fc.ref, ""); err != nil {
			return target, err
		}
		if err := w.file.SetCellFormula(sheet, fc.ref, formula); err != nil {
			return target, err
		}
	}

	if err := w.renameChartRefs(old, target); err != nil {
		return target, err
	}
	w.renameDefinedNames(old, target)
	if refs, ok := w.charts[old]; ok {
		delete(w.charts, old)
		w.charts[target] = refs
	}
	return target, nil
}

// uniqueSheetName returns name, or name with a " (n)" suffix when another
// sheet than self already uses it. Sheet names compare case-insensitively.
func (w *Workbook) uniqueSheetName(self, name string) string {
	if name == "" {
		return ""
	}
	taken := func(candidate string) bool {
		for _, s := range w.Sheets() {
			if s != self && strings.EqualFold(s, candidate) {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate := truncateRunes(name, MaxSheetNameLength-utf8.RuneCountInString(suffix)) + suffix
		if !taken(candidate) {
			return candidate
		}
	}
}

type formulaCell struct {
	sheet   string
	ref     string
	formula string
}

// formulasReferencing lists the formula cells of every sheet whose formula
// mentions sheet.
func (w *Workbook) formulasReferencing(sheet string) ([]formulaCell, error) {
	var result []formulaCell
	for _, s := range w.Sheets() {
		cells, err := w.Cells(s)
		if err != nil {
			return nil, err
		}
		for _, c := range cells {
			if !c.IsFormula() {
				continue
			}
			if parser.ReferencesSheet(c.Formula, sheet) {
				result = append(result, formulaCell{sheet: s, ref: c.Ref, formula: c.Formula})
			}
		}
	}
	return result, nil
}

// renameChartRefs rewrites the series and category references of every chart.
func (w *Workbook) renameChartRefs(old, target string) error {
	for _, refs := range w.charts {
		for _, ref := range refs {
			data, err := w.ReadPart(ref.Part)
			if err != nil {
				return err
			}
			if data == nil {
				continue
			}
			out, changed, err := parser.RenameSheetRefs(data, old, target)
			if err != nil {
				return fmt.Errorf("chart %s: %w", ref.Part, err)
			}
			if changed {
				w.writePart(ref.Part, out)
			}
		}
	}
	return nil
}

// renameDefinedNames rewrites the defined names that still refer to old.
// A name that cannot be rewritten is logged and left as it is.
func (w *Workbook) renameDefinedNames(old, target string) {
	for _, dn := range w.file.GetDefinedName() {
		if !parser.ReferencesSheet(dn.RefersTo, old) {
			continue
		}
		updated := dn
		updated.RefersTo = parser.ReplaceSheetRef(dn.RefersTo, old, target)
		err := w.file.DeleteDefinedName(&dn)
		if err == nil {
			err = w.file.SetDefinedName(&updated)
		}
		if err != nil {
			w.logger.Warn("defined name not updated", "name", dn.Name, "scope", dn.Scope, "error", err)
		}
	}
}
