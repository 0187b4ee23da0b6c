package scheduler

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/zeebo/xxh3"

	"github.com/julianstephens/hourplan/internal/constants"
	"github.com/julianstephens/hourplan/internal/models"
)

// ColorFromID derives a stable display color from a block id.
func ColorFromID(blockID string) string {
	hue := float64(xxh3.HashString(blockID) % 360)
	return colorful.Hsl(hue, 0.70, 0.45).Hex()
}

// ColorFor returns the display color of a new block.
func ColorFor(kind models.BlockKind, blockID string) string {
	if kind == models.BlockKindUrgent {
		return constants.UrgentColor
	}
	return ColorFromID(blockID)
}
