package models

// ChartSeries represents the display name of one chart series.
type ChartSeries struct {
	// Index is the 1-based series position within the chart.
	Index int `json:"index"`
	// Name is the series display name.
	Name string `json:"name"`
	// NameRange is the range reference for the series name.
	NameRange string `json:"name_range,omitempty"`
}

// Chart represents the text-bearing parts of an embedded chart.
type Chart struct {
	// Name is the chart object name (e.g., "Chart 1").
	Name string `json:"name"`
	// ChartType is the chart type (e.g., Column, Line).
	ChartType string `json:"chart_type"`
	// Part is the package path of the chart XML part.
	Part string `json:"part"`
	// Title is the chart title.
	Title string `json:"title,omitempty"`
	// CategoryAxisTitle is the category (X) axis title.
	CategoryAxisTitle string `json:"category_axis_title,omitempty"`
	// ValueAxisTitle is the value (Y) axis title.
	ValueAxisTitle string `json:"value_axis_title,omitempty"`
	// Series is the list of series included in the chart.
	Series []ChartSeries `json:"series"`
}
