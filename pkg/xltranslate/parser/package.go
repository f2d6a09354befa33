package parser

import (
	"encoding/xml"
	"path"
	"strings"
)

// PartReader gives access to the raw parts of an OOXML package.
// ReadPart returns nil data and a nil error when the part does not exist.
type PartReader interface {
	ReadPart(name string) ([]byte, error)
}

// PartMap is a PartReader over an in-memory set of parts.
type PartMap map[string][]byte

// ReadPart implements PartReader.
func (m PartMap) ReadPart(name string) ([]byte, error) {
	return m[name], nil
}

// relationship is one entry of a .rels part.
type relationship struct {
	id      string
	relType string
	target  string
}

// relsPathFor returns the relationships part of a package part.
func relsPathFor(part string) string {
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}

// resolveTarget resolves a relationship target against the part owning the
// relationship.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(source), target)
}

// parseRelationships parses a .rels part. External relationships are skipped.
func parseRelationships(data []byte) []relationship {
	var result []relationship
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var rel relationship
		external := false
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "Id":
				rel.id = attr.Value
			case "Type":
				rel.relType = attr.Value
			case "Target":
				rel.target = attr.Value
			case "TargetMode":
				external = attr.Value == "External"
			}
		}
		if rel.id != "" && !external {
			result = append(result, rel)
		}
	}

	return result
}

// readRelationships reads and parses the relationships of part.
func readRelationships(r PartReader, part string) ([]relationship, error) {
	data, err := r.ReadPart(relsPathFor(part))
	if err != nil || data == nil {
		return nil, err
	}
	return parseRelationships(data), nil
}

// parseWorkbookSheets maps the relationship IDs of workbook.xml to sheet names.
func parseWorkbookSheets(data []byte) map[string]string {
	result := make(map[string]string) // rId -> sheet name
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" {
			var name, rID string
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "name":
					name = attr.Value
				case "id":
					rID = attr.Value
				}
			}
			if name != "" && rID != "" {
				result[rID] = name
			}
		}
	}

	return result
}

// readElementText reads character data until the end of the current element.
func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}
