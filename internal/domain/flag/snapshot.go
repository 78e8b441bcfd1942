package flag

import "time"

// SnapshotEntry is the subset of a Record the agent persists locally so the
// next poll cycle has something to compare against. The full response text is
// kept, not just its presence, so content-level edits are detectable.
type SnapshotEntry struct {
	FlagID             string    `json:"flagId"`
	Status             Status    `json:"status"`
	InstructorResponse string    `json:"instructorResponse,omitempty"`
	UpdatedAt          time.Time `json:"updatedAt"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Snapshot maps flag IDs to their last observed state.
type Snapshot map[string]SnapshotEntry

// ProjectRecord reduces a Record to its persisted form.
func ProjectRecord(r Record) SnapshotEntry {
	return SnapshotEntry{
		FlagID:             r.FlagID,
		Status:             r.Status,
		InstructorResponse: r.InstructorResponse,
		UpdatedAt:          r.EffectiveUpdatedAt(),
		CreatedAt:          r.CreatedAt,
	}
}

// Project builds a full Snapshot from a fetched record set. IDs that stopped
// appearing in the fetch simply drop out; the snapshot is always replaced
// wholesale, never merged.
func Project(records []Record) Snapshot {
	snap := make(Snapshot, len(records))
	for _, r := range records {
		snap[r.FlagID] = ProjectRecord(r)
	}
	return snap
}
