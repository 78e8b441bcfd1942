package notify

import (
	"sync"
	"time"

	"flag_notification_agent/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// Severity selects the icon a renderer shows for a toast.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

const baseOffset = 20

// Toast is one transient notification to present to the student.
type Toast struct {
	Severity  Severity
	Message   string
	TargetURL string // empty means the toast is not clickable
	Duration  time.Duration
}

// ActiveToast is a Toast that is currently visible, placed at a stacking
// offset so concurrent notifications do not overlap.
type ActiveToast struct {
	Toast
	ID     int64
	Offset int
}

// Renderer presents toasts to the student. Show is called when a toast
// becomes visible, Hide when it is removed (auto-dismiss or user action).
type Renderer interface {
	Show(t ActiveToast)
	Hide(t ActiveToast)
}

// ToastCenter owns the set of currently visible toasts: it assigns stacking
// offsets from the visible count, schedules auto-dismissal, and fans out to
// the registered renderers.
type ToastCenter struct {
	log        *logrus.Entry
	offsetStep int

	mu        sync.Mutex
	nextID    int64
	active    map[int64]ActiveToast
	timers    map[int64]*time.Timer
	renderers []Renderer
}

// NewToastCenter constructs a center whose toasts stack offsetStep pixels
// apart.
func NewToastCenter(offsetStep int, log *logrus.Entry) *ToastCenter {
	return &ToastCenter{
		log:        log,
		offsetStep: offsetStep,
		active:     make(map[int64]ActiveToast),
		timers:     make(map[int64]*time.Timer),
	}
}

// AddRenderer registers a renderer. Returns the center for chaining.
func (c *ToastCenter) AddRenderer(r Renderer) *ToastCenter {
	c.mu.Lock()
	c.renderers = append(c.renderers, r)
	c.mu.Unlock()
	return c
}

// Show makes a toast visible and, if it carries a duration, schedules its
// auto-dismissal. Returns the toast's ID so callers can dismiss it early.
func (c *ToastCenter) Show(t Toast) int64 {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	at := ActiveToast{
		Toast:  t,
		ID:     id,
		Offset: baseOffset + c.offsetStep*len(c.active),
	}
	c.active[id] = at
	if t.Duration > 0 {
		c.timers[id] = time.AfterFunc(t.Duration, func() { c.Dismiss(id) })
	}
	renderers := append([]Renderer(nil), c.renderers...)
	count := len(c.active)
	c.mu.Unlock()

	metrics.SetVisibleToasts(count)
	for _, r := range renderers {
		r.Show(at)
	}
	return id
}

// Dismiss removes a toast. Safe to call for an ID that was already removed,
// whether by its auto-dismiss timer or by an earlier user action.
func (c *ToastCenter) Dismiss(id int64) {
	c.mu.Lock()
	at, ok := c.active[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.active, id)
	if tm := c.timers[id]; tm != nil {
		tm.Stop()
		delete(c.timers, id)
	}
	renderers := append([]Renderer(nil), c.renderers...)
	count := len(c.active)
	c.mu.Unlock()

	metrics.SetVisibleToasts(count)
	for _, r := range renderers {
		r.Hide(at)
	}
}

// VisibleCount reports how many toasts are currently on screen.
func (c *ToastCenter) VisibleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}
