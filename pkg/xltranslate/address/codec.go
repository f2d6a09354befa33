package address

import (
	"fmt"
	"strconv"
	"strings"
)

// Encode returns the string token for a.
func Encode(a Address) string {
	switch a.Kind {
	case KindChartTitle:
		return TagChartTitle + sep + a.Chart
	case KindLegacyChart:
		return TagChart + sep + a.Chart
	case KindChartSeries:
		return TagChartSeries + sep + a.Chart + sep + strconv.Itoa(a.Series)
	case KindChartAxis:
		return TagChartAxis + sep + a.Chart + sep + strconv.Itoa(int(a.Axis))
	default:
		return a.Ref
	}
}

// Decode parses a string token produced by Encode.
//
// The tag is split off at the first ':' only; everything after it belongs to
// the chart name, except for series and axis addresses whose last
// ':'-delimited field is the index. Strings without a reserved tag are cell
// references.
func Decode(s string) (Address, error) {
	if s == "" {
		return Address{}, fmt.Errorf("%w: empty string", ErrMalformedAddress)
	}
	tag, rest, ok := strings.Cut(s, sep)
	if !ok || !isReservedTag(tag) {
		return Cell(s), nil
	}

	switch tag {
	case TagChartTitle:
		if rest == "" {
			return Address{}, fmt.Errorf("%w: %q: empty chart name", ErrMalformedAddress, s)
		}
		return ChartTitle(rest), nil
	case TagChart:
		if rest == "" {
			return Address{}, fmt.Errorf("%w: %q: empty chart name", ErrMalformedAddress, s)
		}
		return LegacyChart(rest), nil
	case TagChartSeries:
		chart, field, err := splitTrailing(s, rest)
		if err != nil {
			return Address{}, err
		}
		index, err := strconv.Atoi(field)
		if err != nil || index < 1 {
			return Address{}, fmt.Errorf("%w: %q: series index %q", ErrMalformedAddress, s, field)
		}
		return ChartSeries(chart, index), nil
	case TagChartAxis:
		chart, field, err := splitTrailing(s, rest)
		if err != nil {
			return Address{}, err
		}
		axis, err := parseAxis(field)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %q: %v", ErrMalformedAddress, s, err)
		}
		return ChartAxis(chart, axis), nil
	}
	return Address{}, fmt.Errorf("%w: %q", ErrMalformedAddress, s)
}

// splitTrailing splits "<chart>:<field>" at the last separator.
func splitTrailing(s, rest string) (chart, field string, err error) {
	idx := strings.LastIndex(rest, sep)
	if idx < 0 {
		return "", "", fmt.Errorf("%w: %q: missing trailing field", ErrMalformedAddress, s)
	}
	chart, field = rest[:idx], rest[idx+1:]
	if chart == "" {
		return "", "", fmt.Errorf("%w: %q: empty chart name", ErrMalformedAddress, s)
	}
	return chart, field, nil
}

func parseAxis(field string) (AxisKind, error) {
	switch field {
	case "1":
		return AxisCategory, nil
	case "2":
		return AxisValue, nil
	}
	return 0, fmt.Errorf("axis kind %q is not 1 or 2", field)
}
