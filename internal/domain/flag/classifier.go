package flag

import "time"

// Classify compares the previously observed snapshot against a freshly fetched
// record set and returns the user-meaningful changes, in fetch order. It is a
// pure function: no I/O, no hidden state, at most one event per record.
//
// recentWindow bounds the missed-transition heuristic: a record the agent has
// never seen that is already terminal is only worth announcing if it was
// created recently enough that its whole lifecycle plausibly happened between
// two polls. Older terminal records are absorbed silently as baseline.
//
// Whether an empty previous snapshot should suppress classification entirely
// (cold start) is the caller's decision, not this function's.
func Classify(previous Snapshot, current []Record, now time.Time, recentWindow time.Duration) []ChangeEvent {
	var events []ChangeEvent
	for _, r := range current {
		if ev, ok := classifyRecord(previous, r, now, recentWindow); ok {
			events = append(events, ev)
		}
	}
	return events
}

func classifyRecord(previous Snapshot, r Record, now time.Time, recentWindow time.Duration) (ChangeEvent, bool) {
	prev, seen := previous[r.FlagID]
	if !seen {
		if r.Status.Terminal() {
			age := now.Sub(r.CreatedAt)
			if age > 0 && age < recentWindow {
				return ChangeEvent{Kind: statusEventKind(r.Status), Flag: r, ResponderName: responderName(r)}, true
			}
		}
		// New or unseen record with nothing to announce; it enters the
		// snapshot as baseline when the caller replaces it.
		return ChangeEvent{}, false
	}

	// A freshly written response outranks a simultaneous status flip: both
	// stem from the same instructor action and the response is the part the
	// student actually wants to read.
	if prev.InstructorResponse == "" && r.InstructorResponse != "" {
		return ChangeEvent{Kind: EventResponseAdded, Flag: r, ResponderName: responderName(r)}, true
	}

	if prev.Status == StatusPending && r.Status.Terminal() {
		return ChangeEvent{Kind: statusEventKind(r.Status), Flag: r, ResponderName: responderName(r)}, true
	}

	// Edited response. The strict timestamp check keeps a re-serialized but
	// unchanged cycle from re-notifying.
	if prev.InstructorResponse != "" && r.InstructorResponse != "" &&
		prev.InstructorResponse != r.InstructorResponse &&
		r.EffectiveUpdatedAt().After(prev.UpdatedAt) {
		return ChangeEvent{Kind: EventResponseUpdated, Flag: r, ResponderName: responderName(r)}, true
	}

	return ChangeEvent{}, false
}

func statusEventKind(s Status) EventKind {
	if s == StatusDismissed {
		return EventStatusDismissed
	}
	return EventStatusResolved
}

func responderName(r Record) string {
	if r.InstructorName != "" {
		return r.InstructorName
	}
	return "Your instructor"
}
