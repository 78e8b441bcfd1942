package flag

import "time"

// Status is the moderation state of a student-submitted flag.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewed  Status = "reviewed"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

// Terminal reports whether no further moderation transition is expected.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusDismissed
}

// Record represents one student-submitted flag as served by the flags endpoint.
// The backend owns these; the agent only ever reads them.
type Record struct {
	FlagID             string    `json:"flagId"`
	Status             Status    `json:"status"`
	InstructorResponse string    `json:"instructorResponse,omitempty"`
	InstructorName     string    `json:"instructorName,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// EffectiveUpdatedAt returns UpdatedAt, falling back to CreatedAt for records
// that were never touched after creation.
func (r Record) EffectiveUpdatedAt() time.Time {
	if r.UpdatedAt.IsZero() {
		return r.CreatedAt
	}
	return r.UpdatedAt
}
