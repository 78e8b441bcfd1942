package notify

import (
	"fmt"
	"time"

	"flag_notification_agent/internal/domain/flag"
	"flag_notification_agent/internal/infra/metrics"
)

// Dispatcher turns classified change events into toasts: one toast per event,
// with a fixed message template per kind. Response toasts stay up longer than
// bare status toasts since there is more to read.
type Dispatcher struct {
	center           *ToastCenter
	reviewURL        string
	statusDuration   time.Duration
	responseDuration time.Duration
}

// NewDispatcher constructs a dispatcher whose toasts link to reviewURL.
func NewDispatcher(center *ToastCenter, reviewURL string, statusDuration, responseDuration time.Duration) *Dispatcher {
	return &Dispatcher{
		center:           center,
		reviewURL:        reviewURL,
		statusDuration:   statusDuration,
		responseDuration: responseDuration,
	}
}

// Dispatch renders exactly one toast for the event.
func (d *Dispatcher) Dispatch(ev flag.ChangeEvent) {
	t := Toast{TargetURL: d.reviewURL}

	switch ev.Kind {
	case flag.EventResponseAdded:
		t.Severity = SeveritySuccess
		t.Message = fmt.Sprintf("%s responded to your flag. Click to view.", ev.ResponderName)
		t.Duration = d.responseDuration
	case flag.EventResponseUpdated:
		t.Severity = SeveritySuccess
		t.Message = fmt.Sprintf("%s updated their response to your flag. Click to view.", ev.ResponderName)
		t.Duration = d.responseDuration
	case flag.EventStatusResolved:
		t.Severity = SeveritySuccess
		t.Message = "Your flag was resolved. Click to view."
		t.Duration = d.statusDuration
	case flag.EventStatusDismissed:
		t.Severity = SeverityInfo
		t.Message = "Your flag was reviewed and dismissed. Click to view."
		t.Duration = d.statusDuration
	default:
		return
	}

	d.center.Show(t)
	metrics.ObserveNotificationShown()
}
