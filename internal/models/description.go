package models

import (
	"sort"
	"strings"
)

// Description is a standing instruction shown with every slice whose block
// carries Label.
type Description struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Descriptions maps a trimmed label to its text.
type Descriptions map[string]string

// DescriptionKey normalizes a label for lookup.
func DescriptionKey(label string) string {
	return strings.TrimSpace(label)
}

// For returns the text registered for label, or "".
func (d Descriptions) For(label string) string {
	return d[DescriptionKey(label)]
}

func (d Descriptions) Clone() Descriptions {
	if d == nil {
		return nil
	}
	out := make(Descriptions, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// With returns a copy with desc stored. Empty text removes the entry.
func (d Descriptions) With(desc Description) Descriptions {
	out := d.Clone()
	if out == nil {
		out = Descriptions{}
	}
	key := DescriptionKey(desc.Label)
	if desc.Text == "" {
		delete(out, key)
	} else {
		out[key] = desc.Text
	}
	return out
}

// List returns the entries sorted by label.
func (d Descriptions) List() []Description {
	out := make([]Description, 0, len(d))
	for label, text := range d {
		out = append(out, Description{Label: label, Text: text})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
