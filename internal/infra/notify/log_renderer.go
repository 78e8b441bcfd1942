package notify

import "github.com/sirupsen/logrus"

// LogRenderer writes toast activity to the application log. It is always
// registered so every notification leaves a trace even when no richer
// renderer is configured.
type LogRenderer struct {
	log *logrus.Entry
}

func NewLogRenderer(log *logrus.Entry) *LogRenderer {
	return &LogRenderer{log: log}
}

func (r *LogRenderer) Show(t ActiveToast) {
	r.log.WithFields(logrus.Fields{
		"toast_id": t.ID,
		"severity": t.Severity,
		"offset":   t.Offset,
		"target":   t.TargetURL,
	}).Info(t.Message)
}

func (r *LogRenderer) Hide(t ActiveToast) {
	r.log.WithField("toast_id", t.ID).Debug("Notification dismissed.")
}
