package planner

import (
	"strings"

	"github.com/julianstephens/hourplan/internal/models"
)

// SaveDescription registers or replaces the instructions shown with every
// slice labeled label.
func (p *Planner) SaveDescription(snap models.Snapshot, label, text string) (Result, error) {
	key := models.DescriptionKey(label)
	if key == "" {
		return Result{}, invalidf("label is required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, invalidf("description text is required")
	}

	d := models.Description{Label: key, Text: text}
	next := snap
	next.Descriptions = snap.Descriptions.With(d)
	return Result{Snapshot: next, Changes: models.ChangeSet{Descriptions: []models.Description{d}}}, nil
}

// DeleteDescription removes the instructions registered for label.
func (p *Planner) DeleteDescription(snap models.Snapshot, label string) (Result, error) {
	key := models.DescriptionKey(label)
	if _, ok := snap.Descriptions[key]; !ok {
		return Result{}, notFoundf("description for %q", key)
	}

	d := models.Description{Label: key}
	next := snap
	next.Descriptions = snap.Descriptions.With(d)
	return Result{Snapshot: next, Changes: models.ChangeSet{Descriptions: []models.Description{d}}}, nil
}
