package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"flag_notification_agent/internal/infra/visibility"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type countingChecker struct {
	calls atomic.Int64
}

func (c *countingChecker) CheckForUpdates(context.Context) error {
	c.calls.Add(1)
	return nil
}

func testEntry() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l.WithField("component", "scheduler-test")
}

// A long interval keeps cron ticks out of these tests; only the settle-delayed
// immediate poll fires.
func newTestScheduler(checker Checker, vis *visibility.Signal) *PollScheduler {
	return NewPollScheduler(checker, vis, time.Hour, 10*time.Millisecond, time.Second, testEntry())
}

func TestStart_FiresSettleDelayedPoll(t *testing.T) {
	checker := &countingChecker{}
	s := newTestScheduler(checker, visibility.NewSignal(true))

	s.Start()
	defer s.Stop()

	assert.True(t, s.Polling())
	assert.Eventually(t, func() bool {
		return checker.calls.Load() >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestStart_StaysIdleWhileHidden(t *testing.T) {
	checker := &countingChecker{}
	vis := visibility.NewSignal(false)
	s := newTestScheduler(checker, vis)

	s.Start()
	defer s.Stop()

	assert.False(t, s.Polling())
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, checker.calls.Load())
}

func TestVisibility_PauseAndResume(t *testing.T) {
	checker := &countingChecker{}
	vis := visibility.NewSignal(true)
	s := newTestScheduler(checker, vis)
	s.Start()
	defer s.Stop()

	vis.Set(false)
	assert.False(t, s.Polling())

	vis.Set(true)
	assert.True(t, s.Polling())

	// Resuming fires another settle-delayed immediate poll.
	assert.Eventually(t, func() bool {
		return checker.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestHidden_CancelsPendingSettlePoll(t *testing.T) {
	checker := &countingChecker{}
	vis := visibility.NewSignal(true)
	s := NewPollScheduler(checker, vis, time.Hour, time.Hour, time.Second, testEntry())
	s.Start()
	defer s.Stop()

	vis.Set(false)
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, checker.calls.Load())
}

func TestStop_Idempotent(t *testing.T) {
	checker := &countingChecker{}
	vis := visibility.NewSignal(true)
	s := newTestScheduler(checker, vis)
	s.Start()

	s.Stop()
	s.Stop()

	assert.False(t, s.Polling())
}

func TestStop_DropsVisibilitySubscription(t *testing.T) {
	checker := &countingChecker{}
	vis := visibility.NewSignal(true)
	s := newTestScheduler(checker, vis)
	s.Start()
	s.Stop()

	vis.Set(false)
	vis.Set(true)

	assert.False(t, s.Polling(), "a stopped scheduler must not resume on visibility changes")
}

func TestStart_AfterStopIsNoOp(t *testing.T) {
	checker := &countingChecker{}
	s := newTestScheduler(checker, visibility.NewSignal(true))
	s.Stop()
	s.Start()

	assert.False(t, s.Polling())
}
