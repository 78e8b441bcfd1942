package app

import (
	"context"
	"sync/atomic"
	"time"

	"flag_notification_agent/internal/domain/flag"
	"flag_notification_agent/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// Fetcher retrieves the caller's current full flag set from the backend.
type Fetcher interface {
	FetchCurrentFlags(ctx context.Context) ([]flag.Record, error)
}

// SnapshotStore persists the last observed flag state across restarts.
type SnapshotStore interface {
	Load() (flag.Snapshot, error)
	Save(records []flag.Record) error
}

// Dispatcher surfaces one notification per classified change event.
type Dispatcher interface {
	Dispatch(ev flag.ChangeEvent)
}

// PollEngine runs the fetch -> classify -> dispatch -> snapshot-replace cycle.
// All mutable state (the snapshot mirror, the in-flight guard, the cold-start
// flag) lives on the instance, so tests can run several engines side by side.
//
// The single-flight guard serializes cycles: while one is running, further
// CheckForUpdates calls return immediately without fetching. There is no
// mid-fetch cancellation; a slow fetch just causes the next tick to be skipped.
type PollEngine struct {
	fetcher      Fetcher
	store        SnapshotStore
	dispatcher   Dispatcher
	log          *logrus.Entry
	recentWindow time.Duration
	now          func() time.Time

	checking  atomic.Bool
	snapshot  flag.Snapshot
	baselined bool
}

// NewPollEngine constructs an engine. recentWindow bounds the classifier's
// missed-transition heuristic.
func NewPollEngine(
	fetcher Fetcher,
	store SnapshotStore,
	dispatcher Dispatcher,
	recentWindow time.Duration,
	log *logrus.Entry,
) *PollEngine {
	return &PollEngine{
		fetcher:      fetcher,
		store:        store,
		dispatcher:   dispatcher,
		log:          log,
		recentWindow: recentWindow,
		now:          time.Now,
		snapshot:     flag.Snapshot{},
	}
}

// LoadSnapshot primes the in-memory mirror from the store. An empty result
// (first run, cleared storage, or corrupt data) leaves the engine cold: the
// next successful cycle only establishes a baseline and emits nothing.
func (e *PollEngine) LoadSnapshot() {
	snap, err := e.store.Load()
	if err != nil {
		e.log.WithError(err).Warn("Could not load persisted snapshot, starting cold.")
		snap = flag.Snapshot{}
	}
	e.snapshot = snap
	e.baselined = len(snap) > 0
	e.log.WithField("known_flags", len(snap)).Info("Snapshot loaded.")
}

// CheckForUpdates runs one poll cycle. If a cycle is already in flight, it
// returns immediately without fetching. A fetch error leaves the snapshot
// untouched and is returned for the caller to log; the next tick retries.
func (e *PollEngine) CheckForUpdates(ctx context.Context) error {
	if !e.checking.CompareAndSwap(false, true) {
		e.log.Debug("Poll cycle already in flight, skipping this tick.")
		return nil
	}
	defer e.checking.Store(false)

	records, err := e.fetcher.FetchCurrentFlags(ctx)
	if err != nil {
		metrics.ObservePollCycle(metrics.ResultFetchError)
		e.log.WithError(err).Warn("Could not fetch current flags, keeping previous snapshot.")
		return err
	}

	if e.baselined {
		events := flag.Classify(e.snapshot, records, e.now(), e.recentWindow)
		for _, ev := range events {
			metrics.ObserveChangeEvent(string(ev.Kind))
			e.dispatcher.Dispatch(ev)
		}
		if len(events) > 0 {
			e.log.WithField("events", len(events)).Info("Detected flag changes.")
		}
	} else {
		e.log.WithField("flags", len(records)).Info("First successful fetch, recording baseline without notifications.")
	}

	// Replace the mirror wholesale only after classification ran against the
	// previous value.
	e.snapshot = flag.Project(records)
	e.baselined = true

	if err := e.store.Save(records); err != nil {
		// The mirror already holds the attempted value, so the next cycle
		// diffs against what was actually observed.
		metrics.ObservePollCycle(metrics.ResultSaveError)
		e.log.WithError(err).Error("Could not persist snapshot.")
		return nil
	}
	metrics.ObservePollCycle(metrics.ResultOK)
	return nil
}
