package models

import "sort"

// Snapshot is the whole planning document handed to and returned from every
// engine operation.
type Snapshot struct {
	Workers      []Worker     `json:"workers"`
	Overrides    Overrides    `json:"overrides"`
	Slices       []TaskSlice  `json:"slices"`
	Descriptions Descriptions `json:"descriptions,omitempty"`
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Workers:      append([]Worker(nil), s.Workers...),
		Overrides:    s.Overrides.Clone(),
		Slices:       append([]TaskSlice(nil), s.Slices...),
		Descriptions: s.Descriptions.Clone(),
	}
	return out
}

// Worker finds a worker by id.
func (s Snapshot) Worker(id string) (Worker, bool) {
	for _, w := range s.Workers {
		if w.ID == id {
			return w, true
		}
	}
	return Worker{}, false
}

// SlicesFor returns the worker's slices in stored order.
func (s Snapshot) SlicesFor(workerID string) []TaskSlice {
	var out []TaskSlice
	for _, sl := range s.Slices {
		if sl.WorkerID == workerID {
			out = append(out, sl)
		}
	}
	return out
}

// Slice finds a slice by id.
func (s Snapshot) Slice(id string) (TaskSlice, bool) {
	for _, sl := range s.Slices {
		if sl.ID == id {
			return sl, true
		}
	}
	return TaskSlice{}, false
}

// ReplaceWorkerSlices returns a copy of the snapshot where the worker's slices
// are replaced by slices. Other workers' slices keep their order.
func (s Snapshot) ReplaceWorkerSlices(workerID string, slices []TaskSlice) Snapshot {
	out := s
	out.Slices = make([]TaskSlice, 0, len(s.Slices)+len(slices))
	for _, sl := range s.Slices {
		if sl.WorkerID != workerID {
			out.Slices = append(out.Slices, sl)
		}
	}
	out.Slices = append(out.Slices, slices...)
	return out
}

// WithWorker returns a copy of the snapshot with w inserted or replaced.
func (s Snapshot) WithWorker(w Worker) Snapshot {
	out := s
	out.Workers = make([]Worker, 0, len(s.Workers)+1)
	replaced := false
	for _, existing := range s.Workers {
		if existing.ID == w.ID {
			out.Workers = append(out.Workers, w)
			replaced = true
			continue
		}
		out.Workers = append(out.Workers, existing)
	}
	if !replaced {
		out.Workers = append(out.Workers, w)
	}
	return out
}

// SortByDate stably sorts slices chronologically.
func SortByDate(slices []TaskSlice) {
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Date < slices[j].Date
	})
}

// ChangeSet describes what a mutation changed, in the shape storage needs to
// persist it: full replacement slice lists for each affected worker, and the
// overrides that were written or cleared.
type ChangeSet struct {
	// WorkerSlices maps worker id to that worker's complete slice list.
	WorkerSlices map[string][]TaskSlice `json:"worker_slices"`
	// Overrides holds overrides to upsert; default-valued entries are deleted.
	Overrides []DayOverride `json:"overrides,omitempty"`
	// Workers holds worker records to upsert.
	Workers []Worker `json:"workers,omitempty"`
	// Descriptions holds descriptions to upsert; empty text deletes the label.
	Descriptions []Description `json:"descriptions,omitempty"`
}

// AffectedWorkers lists worker ids whose slices changed, sorted.
func (c ChangeSet) AffectedWorkers() []string {
	ids := make([]string, 0, len(c.WorkerSlices))
	for id := range c.WorkerSlices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsEmpty reports whether the change set carries nothing to persist.
func (c ChangeSet) IsEmpty() bool {
	return len(c.WorkerSlices) == 0 && len(c.Overrides) == 0 && len(c.Workers) == 0 && len(c.Descriptions) == 0
}

// ChangeSet returns a change set that writes the whole snapshot.
func (s Snapshot) ChangeSet() ChangeSet {
	cs := ChangeSet{
		Workers:      append([]Worker(nil), s.Workers...),
		WorkerSlices: make(map[string][]TaskSlice, len(s.Workers)),
	}
	for _, w := range s.Workers {
		cs.WorkerSlices[w.ID] = nil
	}
	for _, sl := range s.Slices {
		cs.WorkerSlices[sl.WorkerID] = append(cs.WorkerSlices[sl.WorkerID], sl)
	}
	for _, byDate := range s.Overrides {
		for _, o := range byDate {
			cs.Overrides = append(cs.Overrides, o)
		}
	}
	sort.Slice(cs.Overrides, func(i, j int) bool {
		if cs.Overrides[i].WorkerID != cs.Overrides[j].WorkerID {
			return cs.Overrides[i].WorkerID < cs.Overrides[j].WorkerID
		}
		return cs.Overrides[i].Date < cs.Overrides[j].Date
	})
	cs.Descriptions = s.Descriptions.List()
	return cs
}
