package models

import "github.com/ukaji3/xltranslate-go/pkg/xltranslate/address"

// Unit is one translatable occurrence of text.
type Unit struct {
	// Sheet is the name of the sheet owning the location.
	Sheet string `json:"sheet"`
	// Address locates the text within the sheet.
	Address address.Address `json:"address"`
	// Text is the trimmed source text.
	Text string `json:"text"`
}

// Texts returns the distinct non-empty texts of units in first-occurrence order.
func Texts(units []Unit) []string {
	seen := make(map[string]struct{}, len(units))
	var texts []string
	for _, u := range units {
		if u.Text == "" {
			continue
		}
		if _, ok := seen[u.Text]; ok {
			continue
		}
		seen[u.Text] = struct{}{}
		texts = append(texts, u.Text)
	}
	return texts
}
