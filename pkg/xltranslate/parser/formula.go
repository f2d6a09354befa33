package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strings"
)

// QuoteSheetName returns name in the quoted form used by formula references.
func QuoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// ReplaceSheetRef rewrites references to sheet oldName in formula so they
// point at newName. Both 'Quoted'! and bare references are recognised; the
// replacement is always quoted. Text inside string literals is left alone.
func ReplaceSheetRef(formula, oldName, newName string) string {
	if oldName == "" || oldName == newName {
		return formula
	}
	quotedOld := QuoteSheetName(oldName) + "!"
	bareOld := oldName + "!"
	replacement := QuoteSheetName(newName) + "!"

	var b strings.Builder
	inString := false
	for i := 0; i < len(formula); {
		c := formula[i]
		if c == '"' {
			inString = !inString
			b.WriteByte(c)
			i++
			continue
		}
		if !inString {
			rest := formula[i:]
			if strings.HasPrefix(rest, quotedOld) {
				b.WriteString(replacement)
				i += len(quotedOld)
				continue
			}
			if strings.HasPrefix(rest, bareOld) && referenceBoundary(formula, i) {
				b.WriteString(replacement)
				i += len(bareOld)
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// ReferencesSheet reports whether formula refers to the sheet called name.
func ReferencesSheet(formula, name string) bool {
	return name != "" && ReplaceSheetRef(formula, name, "") != formula
}

// referenceBoundary reports whether a sheet reference may start at offset i.
func referenceBoundary(formula string, i int) bool {
	if i == 0 {
		return true
	}
	return strings.IndexByte("=(,;+-*/&^<> {:!", formula[i-1]) >= 0
}

// RenameSheetRefs rewrites the sheet references held in the <c:f> elements
// of a chart part. It reports whether anything changed.
func RenameSheetRefs(data []byte, oldName, newName string) ([]byte, bool, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	type splice struct {
		start, end int
		text       []byte
	}
	var splices []splice
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "f" {
			continue
		}
		node, err := readTextNode(decoder, data, int(decoder.InputOffset()), se)
		if err != nil {
			return nil, false, err
		}
		if node.selfClosing {
			continue
		}
		rewritten := ReplaceSheetRef(node.text, oldName, newName)
		if rewritten == node.text {
			continue
		}
		var buf bytes.Buffer
		_ = xml.EscapeText(&buf, []byte(rewritten))
		splices = append(splices, splice{start: node.start, end: node.end, text: buf.Bytes()})
	}
	if len(splices) == 0 {
		return data, false, nil
	}

	sort.Slice(splices, func(i, j int) bool { return splices[i].start > splices[j].start })
	out := append([]byte(nil), data...)
	for _, s := range splices {
		out = append(out[:s.start], append(s.text, out[s.end:]...)...)
	}
	return out, true, nil
}
