package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"flag_notification_agent/internal/domain/flag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	mu         sync.Mutex
	readyAfter int // number of probes before SessionReady turns true
	probes     int
}

func (f *fakeIdentity) SessionReady(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	return f.probes > f.readyAfter
}

func (f *fakeIdentity) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes
}

type fakeScheduler struct {
	starts int
	stops  int
}

func (s *fakeScheduler) Start() { s.starts++ }
func (s *fakeScheduler) Stop()  { s.stops++ }

func newLifecycleFixture(identity *fakeIdentity, attempts int) (*LifecycleManager, *fakeScheduler) {
	fetcher := &fakeFetcher{records: []flag.Record{}}
	engine := newTestEngine(fetcher, &fakeStore{}, &fakeDispatcher{})
	sched := &fakeScheduler{}
	m := NewLifecycleManager(identity, engine, sched, time.Millisecond, attempts, testEntry())
	return m, sched
}

func TestInitialize_WaitsForIdentity(t *testing.T) {
	identity := &fakeIdentity{readyAfter: 2}
	m, sched := newLifecycleFixture(identity, 10)

	require.NoError(t, m.Initialize(context.Background()))

	assert.Equal(t, 3, identity.probeCount())
	assert.Equal(t, 1, sched.starts)
}

func TestInitialize_ProceedsAfterProbeBudget(t *testing.T) {
	identity := &fakeIdentity{readyAfter: 1000}
	m, sched := newLifecycleFixture(identity, 3)

	require.NoError(t, m.Initialize(context.Background()))

	assert.Equal(t, 3, identity.probeCount(), "probing is bounded")
	assert.Equal(t, 1, sched.starts, "the agent starts regardless")
}

func TestInitialize_CancelledContext(t *testing.T) {
	identity := &fakeIdentity{readyAfter: 1000}
	m, sched := newLifecycleFixture(identity, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, m.Initialize(ctx))
	assert.Zero(t, sched.starts)
}

func TestShutdown_Idempotent(t *testing.T) {
	identity := &fakeIdentity{}
	m, sched := newLifecycleFixture(identity, 1)
	require.NoError(t, m.Initialize(context.Background()))

	m.Shutdown()
	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, 1, sched.stops)
}
