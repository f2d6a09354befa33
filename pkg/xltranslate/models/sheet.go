package models

// SheetData represents the translatable content found on a single sheet.
type SheetData struct {
	// Units contains the translatable units in collection order.
	Units []Unit `json:"units,omitempty"`
	// Charts contains charts detected on the sheet.
	Charts []Chart `json:"charts,omitempty"`
}
