package scheduler

import (
	"context"
	"sync"
	"time"

	"flag_notification_agent/internal/infra/visibility"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Checker runs one poll cycle. The implementation owns its own single-flight
// guard, so overlapping invocations from the scheduler are harmless no-ops.
type Checker interface {
	CheckForUpdates(ctx context.Context) error
}

// PollScheduler owns the periodic poll timer. It has exactly two states:
// idle (no cron engine) and polling. The page-visibility subscription lives
// here and nowhere else - hidden pauses the timer, visible restarts it and
// fires one settle-delayed immediate poll so changes that happened while the
// page was hidden surface promptly.
type PollScheduler struct {
	checker      Checker
	vis          *visibility.Signal
	log          *logrus.Entry
	interval     time.Duration
	settleDelay  time.Duration
	cycleTimeout time.Duration

	mu          sync.Mutex
	cronEngine  *cron.Cron // nil while idle
	settleTimer *time.Timer
	unsubscribe func()
	stopped     bool
}

// NewPollScheduler constructs a scheduler in the idle state.
func NewPollScheduler(
	checker Checker,
	vis *visibility.Signal,
	interval time.Duration,
	settleDelay time.Duration,
	cycleTimeout time.Duration,
	log *logrus.Entry,
) *PollScheduler {
	return &PollScheduler{
		checker:      checker,
		vis:          vis,
		log:          log,
		interval:     interval,
		settleDelay:  settleDelay,
		cycleTimeout: cycleTimeout,
	}
}

// Start subscribes to the visibility signal and, if the page is currently
// visible, begins polling. Calling Start on a stopped scheduler is a no-op.
func (s *PollScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.unsubscribe != nil {
		return
	}
	s.unsubscribe = s.vis.Subscribe(s.onVisibilityChange)
	if s.vis.Visible() {
		s.resumeLocked()
	} else {
		s.log.Info("Page hidden at start, staying idle until it becomes visible.")
	}
}

// Stop pauses polling and drops the visibility subscription. Idempotent.
func (s *PollScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.pauseLocked()
	s.log.Info("Poll scheduler stopped.")
}

// Polling reports whether the periodic timer is currently active.
func (s *PollScheduler) Polling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cronEngine != nil
}

func (s *PollScheduler) onVisibilityChange(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if visible {
		s.log.Debug("Page became visible, resuming polling.")
		s.resumeLocked()
	} else {
		s.log.Debug("Page hidden, pausing polling.")
		s.pauseLocked()
	}
}

func (s *PollScheduler) resumeLocked() {
	if s.cronEngine != nil {
		return
	}
	engine := cron.New()
	engine.Schedule(cron.Every(s.interval), cron.FuncJob(s.runCycle))
	engine.Start()
	s.cronEngine = engine

	// Out-of-cycle poll after a short settle delay so state changes that
	// happened while idle do not wait a full period.
	s.settleTimer = time.AfterFunc(s.settleDelay, s.runCycle)
}

func (s *PollScheduler) pauseLocked() {
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
	if s.cronEngine != nil {
		s.cronEngine.Stop()
		s.cronEngine = nil
	}
}

func (s *PollScheduler) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cycleTimeout)
	defer cancel()
	if err := s.checker.CheckForUpdates(ctx); err != nil {
		s.log.WithError(err).Warn("Poll cycle failed, will retry on the next tick.")
	}
}
