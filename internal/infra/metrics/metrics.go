package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	// ResultOK labels poll cycles that completed and replaced the snapshot.
	ResultOK = "ok"
	// ResultFetchError labels cycles abandoned at the fetch step.
	ResultFetchError = "fetch_error"
	// ResultSaveError labels cycles that classified but failed to persist.
	ResultSaveError = "save_error"
)

var (
	pollCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flag_agent",
			Name:      "poll_cycles_total",
			Help:      "Poll cycles run, partitioned by outcome.",
		},
		[]string{"result"},
	)

	changeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flag_agent",
			Name:      "change_events_total",
			Help:      "Classified change events, partitioned by kind.",
		},
		[]string{"kind"},
	)

	notificationsShownTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "flag_agent",
			Name:      "notifications_shown_total",
			Help:      "Notifications handed to renderers.",
		},
	)

	visibleToasts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "flag_agent",
			Name:      "visible_toasts",
			Help:      "Notifications currently on screen.",
		},
	)
)

// Register attaches the agent's collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pollCyclesTotal,
		changeEventsTotal,
		notificationsShownTotal,
		visibleToasts,
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObservePollCycle records the outcome of one poll cycle.
func ObservePollCycle(result string) {
	pollCyclesTotal.WithLabelValues(result).Inc()
}

// ObserveChangeEvent records one classified change event.
func ObserveChangeEvent(kind string) {
	changeEventsTotal.WithLabelValues(kind).Inc()
}

// ObserveNotificationShown records one notification handed to renderers.
func ObserveNotificationShown() {
	notificationsShownTotal.Inc()
}

// SetVisibleToasts tracks the size of the on-screen notification stack.
func SetVisibleToasts(n int) {
	visibleToasts.Set(float64(n))
}
