package app

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// IdentityProbe reports whether a caller identity has been resolved yet.
type IdentityProbe interface {
	SessionReady(ctx context.Context) bool
}

// Scheduler is the part of the poll scheduler the lifecycle drives.
type Scheduler interface {
	Start()
	Stop()
}

// LifecycleManager sequences startup (wait for identity, prime the snapshot,
// start polling) and teardown.
type LifecycleManager struct {
	identity      IdentityProbe
	engine        *PollEngine
	scheduler     Scheduler
	log           *logrus.Entry
	probeInterval time.Duration
	probeAttempts int
	shutdownOnce  sync.Once
}

// NewLifecycleManager wires the startup sequence together. probeAttempts
// bounds how long Initialize waits for the identity subsystem.
func NewLifecycleManager(
	identity IdentityProbe,
	engine *PollEngine,
	scheduler Scheduler,
	probeInterval time.Duration,
	probeAttempts int,
	log *logrus.Entry,
) *LifecycleManager {
	return &LifecycleManager{
		identity:      identity,
		engine:        engine,
		scheduler:     scheduler,
		log:           log,
		probeInterval: probeInterval,
		probeAttempts: probeAttempts,
	}
}

// Initialize waits (bounded) for the identity subsystem, loads the persisted
// snapshot, and starts the poll scheduler. An exhausted probe budget is
// logged, not fatal: the agent starts anyway and the fetcher's own errors
// take over from there.
func (m *LifecycleManager) Initialize(ctx context.Context) error {
	if !m.waitForIdentity(ctx) {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.log.Warn("Identity never became ready within the probe budget, starting anyway.")
	}

	m.engine.LoadSnapshot()
	m.scheduler.Start()
	m.log.Info("Flag notification agent started.")
	return nil
}

// Shutdown stops polling. Safe to call more than once.
func (m *LifecycleManager) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.scheduler.Stop()
		m.log.Info("Flag notification agent stopped.")
	})
}

func (m *LifecycleManager) waitForIdentity(ctx context.Context) bool {
	for attempt := 1; attempt <= m.probeAttempts; attempt++ {
		if m.identity.SessionReady(ctx) {
			m.log.WithField("attempt", attempt).Debug("Identity ready.")
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(m.probeInterval):
		}
	}
	return false
}
