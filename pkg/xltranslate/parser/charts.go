package parser

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/address"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/models"
)

// ChartTypeMap maps OOXML chart element tags to chart type names.
var ChartTypeMap = map[string]string{
	"lineChart":      "Line",
	"line3DChart":    "3DLine",
	"barChart":       "Bar",
	"bar3DChart":     "3DBar",
	"areaChart":      "Area",
	"area3DChart":    "3DArea",
	"pieChart":       "Pie",
	"pie3DChart":     "3DPie",
	"doughnutChart":  "Doughnut",
	"scatterChart":   "XYScatter",
	"bubbleChart":    "Bubble",
	"radarChart":     "Radar",
	"surfaceChart":   "Surface",
	"surface3DChart": "3DSurface",
	"stockChart":     "Stock",
	"ofPieChart":     "PieOfPie",
}

const (
	relTypeWorksheet = "/worksheet"
	relTypeDrawing   = "/drawing"
	relTypeChart     = "/chart"
)

// ChartRef locates a chart embedded in a sheet.
type ChartRef struct {
	// Name is the chart object name from the drawing (e.g., "Chart 1").
	Name string
	// Part is the package path of the chart XML part.
	Part string
}

// drawingChart is a chart frame found in a drawing part.
type drawingChart struct {
	name string
	rID  string
}

// ChartParts maps sheet names to the charts embedded in them, in drawing
// order. Sheets without charts are absent.
func ChartParts(r PartReader) (map[string][]ChartRef, error) {
	result := make(map[string][]ChartRef)

	workbookXML, err := r.ReadPart("xl/workbook.xml")
	if err != nil || workbookXML == nil {
		return result, err
	}
	sheetsInfo := parseWorkbookSheets(workbookXML)
	if len(sheetsInfo) == 0 {
		return result, nil
	}

	wbRels, err := readRelationships(r, "xl/workbook.xml")
	if err != nil {
		return nil, err
	}

	for _, rel := range wbRels {
		sheetName, ok := sheetsInfo[rel.id]
		if !ok || !strings.HasSuffix(rel.relType, relTypeWorksheet) {
			continue
		}
		sheetPart := resolveTarget("xl/workbook.xml", rel.target)

		refs, err := sheetCharts(r, sheetPart)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
		}
		if len(refs) > 0 {
			result[sheetName] = refs
		}
	}

	return result, nil
}

// sheetCharts follows the drawing relationships of a worksheet part.
func sheetCharts(r PartReader, sheetPart string) ([]ChartRef, error) {
	sheetRels, err := readRelationships(r, sheetPart)
	if err != nil {
		return nil, err
	}

	var refs []ChartRef
	for _, rel := range sheetRels {
		if !strings.HasSuffix(rel.relType, relTypeDrawing) {
			continue
		}
		drawingPart := resolveTarget(sheetPart, rel.target)
		drawingXML, err := r.ReadPart(drawingPart)
		if err != nil {
			return nil, err
		}
		if drawingXML == nil {
			continue
		}

		frames := parseDrawingCharts(drawingXML)
		if len(frames) == 0 {
			continue
		}
		drawingRels, err := readRelationships(r, drawingPart)
		if err != nil {
			return nil, err
		}
		targets := make(map[string]string, len(drawingRels))
		for _, dr := range drawingRels {
			if strings.HasSuffix(dr.relType, relTypeChart) {
				targets[dr.id] = resolveTarget(drawingPart, dr.target)
			}
		}

		for _, frame := range frames {
			part, ok := targets[frame.rID]
			if !ok {
				continue
			}
			name := frame.name
			if name == "" {
				name = fmt.Sprintf("Chart %d", len(refs)+1)
			}
			refs = append(refs, ChartRef{Name: name, Part: part})
		}
	}
	return refs, nil
}

// parseDrawingCharts lists the chart frames of a drawing part in document
// order. Frames inside group shapes and every anchor type are included.
func parseDrawingCharts(data []byte) []drawingChart {
	var result []drawingChart
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	var (
		current *drawingChart
		depth   int
	)
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			if current != nil {
				depth++
				switch t.Name.Local {
				case "cNvPr":
					if current.name == "" {
						current.name = attrValue(t, "name")
					}
				case "chart":
					current.rID = attrValue(t, "id")
				}
				continue
			}
			if t.Name.Local == "graphicFrame" {
				current = &drawingChart{}
				depth = 1
			}
		case xml.EndElement:
			if current == nil {
				continue
			}
			depth--
			if depth == 0 {
				if current.rID != "" {
					result = append(result, *current)
				}
				current = nil
			}
		}
	}

	return result
}

// ParseChart reads the text-bearing parts of a chart part.
func ParseChart(data []byte, ref ChartRef) (*models.Chart, error) {
	scan, err := scanChart(data)
	if err != nil {
		return nil, fmt.Errorf("chart %q: %w", ref.Part, err)
	}

	chartType := scan.chartType
	if chartType == "" {
		chartType = "unknown"
	}
	chart := &models.Chart{
		Name:      ref.Name,
		ChartType: chartType,
		Part:      ref.Part,
	}
	for _, slot := range scan.slots {
		switch slot.Key.Kind {
		case SlotTitle:
			chart.Title = slot.Text
		case SlotSeries:
			chart.Series = append(chart.Series, models.ChartSeries{
				Index:     slot.Key.Series,
				Name:      slot.Text,
				NameRange: slot.NameRange,
			})
		case SlotAxisTitle:
			if slot.Key.Axis == address.AxisCategory {
				chart.CategoryAxisTitle = slot.Text
			} else {
				chart.ValueAxisTitle = slot.Text
			}
		}
	}
	return chart, nil
}
