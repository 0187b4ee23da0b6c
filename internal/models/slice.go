package models

// BlockKind distinguishes ordinary demand from urgent, pinned work.
type BlockKind string

const (
	BlockKindNormal BlockKind = "normal"
	BlockKindUrgent BlockKind = "urgent"
)

// Valid reports whether k is a known kind.
func (k BlockKind) Valid() bool {
	return k == BlockKindNormal || k == BlockKindUrgent
}

// TaskSlice is the portion of a block's hours assigned to one worker on one day.
type TaskSlice struct {
	ID       string    `json:"id"`
	BlockID  string    `json:"block_id"`
	Label    string    `json:"label"`
	Date     string    `json:"date"` // YYYY-MM-DD format
	Hours    float64   `json:"hours"`
	WorkerID string    `json:"worker_id"`
	Color    string    `json:"color"`
	Kind     BlockKind `json:"kind"`
}

// Pinned reports whether reflow must leave the slice in place.
func (s TaskSlice) Pinned() bool {
	return s.Kind == BlockKindUrgent
}

// SliceKey identifies the single slice allowed per (worker, block, date).
type SliceKey struct {
	WorkerID string
	BlockID  string
	Date     string
}

// Key returns the uniqueness key of s.
func (s TaskSlice) Key() SliceKey {
	return SliceKey{WorkerID: s.WorkerID, BlockID: s.BlockID, Date: s.Date}
}

// QueueItem is one block's pending demand during reflow.
type QueueItem struct {
	BlockID string    `json:"block_id"`
	Label   string    `json:"label"`
	Color   string    `json:"color"`
	Kind    BlockKind `json:"kind"`
	Hours   float64   `json:"hours"`
}

// BlockSummary aggregates a block's slices for one worker.
type BlockSummary struct {
	BlockID    string    `json:"block_id"`
	WorkerID   string    `json:"worker_id"`
	Label      string    `json:"label"`
	Color      string    `json:"color"`
	Kind       BlockKind `json:"kind"`
	FirstDate  string    `json:"first_date"`
	LastDate   string    `json:"last_date"`
	TotalHours float64   `json:"total_hours"`
}
