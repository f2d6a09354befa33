// Package address encodes the location of a translatable unit as a single
// string token.
//
// Cells are addressed by their bare reference ("A1"). Chart text carries a
// reserved tag followed by the chart object name and, for series and axes, one
// trailing field:
//
//	CHART_TITLE:<chart>
//	CHART_SERIES:<chart>:<index>
//	CHART_AXIS:<chart>:<1|2>
//	CHART:<chart>            (legacy, title only)
package address

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedAddress indicates a string with a reserved tag whose fields do
// not match the tag's layout.
var ErrMalformedAddress = errors.New("malformed address")

// Reserved tags.
const (
	TagChartTitle  = "CHART_TITLE"
	TagChartSeries = "CHART_SERIES"
	TagChartAxis   = "CHART_AXIS"
	TagChart       = "CHART"
)

const sep = ":"

// Kind identifies the type of location an Address points to.
type Kind int

const (
	// KindCell is a worksheet cell.
	KindCell Kind = iota
	// KindChartTitle is the main title of a chart.
	KindChartTitle
	// KindChartSeries is the display name of one chart series.
	KindChartSeries
	// KindChartAxis is the title of a chart axis.
	KindChartAxis
	// KindLegacyChart is the single-tag chart addressing scheme. It only
	// ever addresses the chart title.
	KindLegacyChart
)

func (k Kind) String() string {
	switch k {
	case KindCell:
		return "cell"
	case KindChartTitle:
		return "chart_title"
	case KindChartSeries:
		return "chart_series"
	case KindChartAxis:
		return "chart_axis"
	case KindLegacyChart:
		return "chart"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// AxisKind selects one of the two chart axes that can carry a title.
// The numeric values match the spreadsheet object model (xlCategory, xlValue).
type AxisKind int

const (
	AxisCategory AxisKind = 1
	AxisValue    AxisKind = 2
)

func (a AxisKind) String() string {
	switch a {
	case AxisCategory:
		return "category"
	case AxisValue:
		return "value"
	default:
		return "axis(" + strconv.Itoa(int(a)) + ")"
	}
}

// Address is a typed identifier of one translatable location. It is
// comparable and can be used as a map key.
type Address struct {
	Kind Kind
	// Ref is the sheet-relative cell reference (KindCell only).
	Ref string
	// Chart is the chart object name (chart kinds only).
	Chart string
	// Series is the 1-based series index (KindChartSeries only).
	Series int
	// Axis is the titled axis (KindChartAxis only).
	Axis AxisKind
}

// Cell returns the address of a cell.
func Cell(ref string) Address {
	return Address{Kind: KindCell, Ref: ref}
}

// ChartTitle returns the address of a chart title.
func ChartTitle(chart string) Address {
	return Address{Kind: KindChartTitle, Chart: chart}
}

// ChartSeries returns the address of the name of a chart series.
func ChartSeries(chart string, index int) Address {
	return Address{Kind: KindChartSeries, Chart: chart, Series: index}
}

// ChartAxis returns the address of a chart axis title.
func ChartAxis(chart string, axis AxisKind) Address {
	return Address{Kind: KindChartAxis, Chart: chart, Axis: axis}
}

// LegacyChart returns a legacy single-tag chart address.
func LegacyChart(chart string) Address {
	return Address{Kind: KindLegacyChart, Chart: chart}
}

// IsChart reports whether the address points into a chart.
func (a Address) IsChart() bool {
	return a.Kind != KindCell
}

// String returns the encoded form of the address.
func (a Address) String() string {
	return Encode(a)
}

// Validate reports whether the address survives an Encode/Decode round trip.
func (a Address) Validate() error {
	switch a.Kind {
	case KindCell:
		if a.Ref == "" {
			return fmt.Errorf("%w: empty cell reference", ErrMalformedAddress)
		}
		if tag, _, ok := strings.Cut(a.Ref, sep); ok && isReservedTag(tag) {
			return fmt.Errorf("%w: cell reference %q uses reserved tag %s", ErrMalformedAddress, a.Ref, tag)
		}
		return nil
	case KindChartTitle, KindLegacyChart:
		return validateChart(a.Chart)
	case KindChartSeries:
		if err := validateChart(a.Chart); err != nil {
			return err
		}
		if a.Series < 1 {
			return fmt.Errorf("%w: series index %d", ErrMalformedAddress, a.Series)
		}
		return nil
	case KindChartAxis:
		if err := validateChart(a.Chart); err != nil {
			return err
		}
		if a.Axis != AxisCategory && a.Axis != AxisValue {
			return fmt.Errorf("%w: axis %d", ErrMalformedAddress, int(a.Axis))
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrMalformedAddress, int(a.Kind))
	}
}

func validateChart(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty chart name", ErrMalformedAddress)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return []byte(Encode(a)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	decoded, err := Decode(string(text))
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

func isReservedTag(tag string) bool {
	switch tag {
	case TagChartTitle, TagChartSeries, TagChartAxis, TagChart:
		return true
	}
	return false
}
