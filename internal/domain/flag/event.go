package flag

// EventKind classifies what changed about a flag between two observations.
type EventKind string

const (
	EventStatusResolved  EventKind = "STATUS_RESOLVED"
	EventStatusDismissed EventKind = "STATUS_DISMISSED"
	EventResponseAdded   EventKind = "RESPONSE_ADDED"
	EventResponseUpdated EventKind = "RESPONSE_UPDATED"
)

// ChangeEvent is one user-meaningful difference detected during a poll cycle.
// Events live only for the cycle that produced them and are never persisted.
type ChangeEvent struct {
	Kind          EventKind
	Flag          Record
	ResponderName string
}
