package flag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWindow = 2 * time.Hour

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func pendingEntry(id string, updatedAt time.Time) SnapshotEntry {
	return SnapshotEntry{
		FlagID:    id,
		Status:    StatusPending,
		UpdatedAt: updatedAt,
		CreatedAt: updatedAt,
	}
}

func TestClassify_Idempotent(t *testing.T) {
	prev := Snapshot{"f1": pendingEntry("f1", now.Add(-time.Hour))}
	current := []Record{{
		FlagID:             "f1",
		Status:             StatusResolved,
		InstructorResponse: "See office hours",
		InstructorName:     "Dr. Lee",
		CreatedAt:          now.Add(-time.Hour),
		UpdatedAt:          now.Add(-time.Minute),
	}}

	first := Classify(prev, current, now, testWindow)
	second := Classify(prev, current, now, testWindow)

	assert.Equal(t, first, second)
}

func TestClassify_ResponseAddedTakesPrecedenceOverStatus(t *testing.T) {
	prev := Snapshot{"f1": pendingEntry("f1", now.Add(-time.Hour))}
	current := []Record{{
		FlagID:             "f1",
		Status:             StatusResolved,
		InstructorResponse: "Please see office hours",
		InstructorName:     "Dr. Lee",
		CreatedAt:          now.Add(-48 * time.Hour),
		UpdatedAt:          now.Add(-time.Minute),
	}}

	events := Classify(prev, current, now, testWindow)

	require.Len(t, events, 1)
	assert.Equal(t, EventResponseAdded, events[0].Kind)
	assert.Equal(t, "Dr. Lee", events[0].ResponderName)
}

func TestClassify_StatusTransitionFromPending(t *testing.T) {
	prev := Snapshot{
		"f1": pendingEntry("f1", now.Add(-time.Hour)),
		"f2": pendingEntry("f2", now.Add(-time.Hour)),
	}
	current := []Record{
		{FlagID: "f1", Status: StatusResolved, CreatedAt: now.Add(-time.Hour), UpdatedAt: now},
		{FlagID: "f2", Status: StatusDismissed, CreatedAt: now.Add(-time.Hour), UpdatedAt: now},
	}

	events := Classify(prev, current, now, testWindow)

	require.Len(t, events, 2)
	assert.Equal(t, EventStatusResolved, events[0].Kind)
	assert.Equal(t, EventStatusDismissed, events[1].Kind)
	assert.Equal(t, "Your instructor", events[0].ResponderName)
}

func TestClassify_MissedTransitionInsideWindow(t *testing.T) {
	current := []Record{{
		FlagID:    "f1",
		Status:    StatusDismissed,
		CreatedAt: now.Add(-10 * time.Minute),
		UpdatedAt: now.Add(-5 * time.Minute),
	}}

	events := Classify(Snapshot{}, current, now, testWindow)

	require.Len(t, events, 1)
	assert.Equal(t, EventStatusDismissed, events[0].Kind)
}

func TestClassify_MissedTransitionOutsideWindow(t *testing.T) {
	current := []Record{{
		FlagID:    "f1",
		Status:    StatusDismissed,
		CreatedAt: now.Add(-3 * time.Hour),
		UpdatedAt: now.Add(-3 * time.Hour),
	}}

	assert.Empty(t, Classify(Snapshot{}, current, now, testWindow))
}

func TestClassify_MissedTransitionClockSkew(t *testing.T) {
	// CreatedAt in the future means the age check cannot trust it.
	current := []Record{{
		FlagID:    "f1",
		Status:    StatusResolved,
		CreatedAt: now.Add(5 * time.Minute),
		UpdatedAt: now.Add(5 * time.Minute),
	}}

	assert.Empty(t, Classify(Snapshot{}, current, now, testWindow))
}

func TestClassify_UnseenPendingRecordIsSilent(t *testing.T) {
	current := []Record{{
		FlagID:    "f1",
		Status:    StatusPending,
		CreatedAt: now.Add(-time.Minute),
		UpdatedAt: now.Add(-time.Minute),
	}}

	assert.Empty(t, Classify(Snapshot{}, current, now, testWindow))
}

func TestClassify_ResponseUpdatedRequiresNewerTimestamp(t *testing.T) {
	t0 := now.Add(-time.Hour)
	prev := Snapshot{"f1": {
		FlagID:             "f1",
		Status:             StatusResolved,
		InstructorResponse: "Original answer",
		UpdatedAt:          t0,
		CreatedAt:          t0,
	}}

	stale := []Record{{
		FlagID:             "f1",
		Status:             StatusResolved,
		InstructorResponse: "Original answer ", // differs, but not newer
		CreatedAt:          t0,
		UpdatedAt:          t0,
	}}
	assert.Empty(t, Classify(prev, stale, now, testWindow))

	updated := []Record{{
		FlagID:             "f1",
		Status:             StatusResolved,
		InstructorResponse: "Revised answer",
		InstructorName:     "Dr. Lee",
		CreatedAt:          t0,
		UpdatedAt:          now.Add(-time.Minute),
	}}
	events := Classify(prev, updated, now, testWindow)
	require.Len(t, events, 1)
	assert.Equal(t, EventResponseUpdated, events[0].Kind)
}

func TestClassify_UnchangedRecordEmitsNothing(t *testing.T) {
	t0 := now.Add(-time.Hour)
	prev := Snapshot{"f1": {
		FlagID:             "f1",
		Status:             StatusResolved,
		InstructorResponse: "Answer",
		UpdatedAt:          t0,
		CreatedAt:          t0,
	}}
	current := []Record{{
		FlagID:             "f1",
		Status:             StatusResolved,
		InstructorResponse: "Answer",
		CreatedAt:          t0,
		UpdatedAt:          t0,
	}}

	assert.Empty(t, Classify(prev, current, now, testWindow))
}

func TestProject_DroppedIDsStopBeingTracked(t *testing.T) {
	snap := Project([]Record{
		{FlagID: "f1", Status: StatusPending, CreatedAt: now},
	})

	require.Len(t, snap, 1)
	_, ok := snap["f2"]
	assert.False(t, ok)
	assert.Equal(t, now, snap["f1"].UpdatedAt, "UpdatedAt falls back to CreatedAt")
}
