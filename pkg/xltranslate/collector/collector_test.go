package collector

import (
	"errors"
	"slices"
	"testing"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/address"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/models"
)

// fakeDocument serves fixed sheets and counts reads.
type fakeDocument struct {
	order     []string
	cells     map[string][]models.Cell
	charts    map[string][]models.Chart
	cellErr   map[string]error
	chartErr  map[string]error
	cellReads int
}

func (d *fakeDocument) Sheets() []string { return d.order }

func (d *fakeDocument) Cells(sheet string) ([]models.Cell, error) {
	d.cellReads++
	if err := d.cellErr[sheet]; err != nil {
		return nil, err
	}
	return d.cells[sheet], nil
}

func (d *fakeDocument) Charts(sheet string) ([]models.Chart, error) {
	if err := d.chartErr[sheet]; err != nil {
		return nil, err
	}
	return d.charts[sheet], nil
}

func text(ref, v string) models.Cell {
	return models.Cell{Ref: ref, Value: v, Kind: models.CellText}
}

func newDocument() *fakeDocument {
	return &fakeDocument{
		order: []string{"Data", "Notes"},
		cells: map[string][]models.Cell{
			"Data": {
				text("A1", "  Hello  "),
				text("B1", "x"),
				{Ref: "C1", Value: "42", Kind: models.CellNumber},
				{Ref: "D1", Value: "Total", Kind: models.CellText, Formula: `"Total"`},
				text("A2", "Hello"),
				text("B2", "   "),
				text("C2", "表格"),
			},
			"Notes": {text("A1", "Remember")},
		},
		charts: map[string][]models.Chart{
			"Data": {{
				Name:           "Chart 1",
				Title:          "World",
				ValueAxisTitle: "Amount",
				Series: []models.ChartSeries{
					{Index: 1, Name: "Revenue"},
					{Index: 2, Name: "2024"},
					{Index: 3, Name: ""},
				},
			}},
		},
	}
}

func collect(c *Collector, doc Document) []models.Unit {
	var units []models.Unit
	for u := range c.Collect(doc) {
		units = append(units, u)
	}
	return units
}

func TestCollect(t *testing.T) {
	units := collect(New(DefaultFilters(), nil), newDocument())

	expected := []models.Unit{
		{Sheet: "Data", Address: address.Cell("A1"), Text: "Hello"},
		{Sheet: "Data", Address: address.Cell("A2"), Text: "Hello"},
		{Sheet: "Data", Address: address.Cell("C2"), Text: "表格"},
		{Sheet: "Data", Address: address.ChartTitle("Chart 1"), Text: "World"},
		{Sheet: "Data", Address: address.ChartSeries("Chart 1", 1), Text: "Revenue"},
		{Sheet: "Data", Address: address.ChartAxis("Chart 1", address.AxisValue), Text: "Amount"},
		{Sheet: "Notes", Address: address.Cell("A1"), Text: "Remember"},
	}
	if !slices.Equal(units, expected) {
		t.Errorf("Collect() =\n%v\nexpected\n%v", units, expected)
	}

	if got := Unique(units); !slices.Equal(got, []string{"Hello", "表格", "World", "Revenue", "Amount", "Remember"}) {
		t.Errorf("Unique() = %v", got)
	}
}

func TestCollectFilters(t *testing.T) {
	tests := []struct {
		name     string
		filters  Filters
		contains address.Address
		absent   address.Address
	}{
		{
			name:     "formulas kept",
			filters:  Filters{MinLength: 2, SkipNumeric: true, IncludeCharts: true},
			contains: address.Cell("D1"),
		},
		{
			name:     "numeric series kept",
			filters:  Filters{MinLength: 2, SkipFormulas: true, IncludeCharts: true},
			contains: address.ChartSeries("Chart 1", 2),
		},
		{
			name:    "charts excluded",
			filters: Filters{MinLength: 2, SkipFormulas: true, SkipNumeric: true},
			absent:  address.ChartTitle("Chart 1"),
		},
		{
			name:     "single characters allowed",
			filters:  Filters{MinLength: 1, SkipFormulas: true, SkipNumeric: true},
			contains: address.Cell("B1"),
		},
		{
			name:    "longer minimum",
			filters: Filters{MinLength: 3, SkipFormulas: true, SkipNumeric: true},
			absent:  address.Cell("C2"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := collect(New(tt.filters, nil), newDocument())
			has := func(a address.Address) bool {
				return slices.ContainsFunc(units, func(u models.Unit) bool { return u.Address == a && u.Sheet == "Data" })
			}
			if tt.contains != (address.Address{}) && !has(tt.contains) {
				t.Errorf("expected %s to be collected", tt.contains)
			}
			if tt.absent != (address.Address{}) && has(tt.absent) {
				t.Errorf("expected %s to be skipped", tt.absent)
			}
		})
	}
}

func TestCollectSkipsUnreadableComponents(t *testing.T) {
	doc := newDocument()
	doc.cellErr = map[string]error{"Data": errors.New("broken sheet")}
	doc.chartErr = map[string]error{"Notes": errors.New("broken drawing")}

	units := collect(New(DefaultFilters(), nil), doc)
	if len(units) != 4 {
		t.Fatalf("expected chart units of Data and cells of Notes, got %v", units)
	}
	if units[0].Address != address.ChartTitle("Chart 1") || units[3].Sheet != "Notes" {
		t.Errorf("unexpected units %v", units)
	}
}

func TestCollectIsLazy(t *testing.T) {
	doc := newDocument()
	c := New(DefaultFilters(), nil)

	for range c.Collect(doc) {
		break
	}
	if doc.cellReads != 1 {
		t.Errorf("expected only the first sheet to be read, got %d reads", doc.cellReads)
	}

	first := collect(c, doc)
	second := collect(c, doc)
	if !slices.Equal(first, second) {
		t.Error("re-collecting the same document must yield the same units")
	}
}
