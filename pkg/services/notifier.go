package services

import "log/slog"

// Notifier shows a transient user-facing notification (a toast on the
// device). Calls are fire-and-forget; the core never depends on their
// outcome.
type Notifier interface {
	Notify(message string)
}

// LogNotifier routes notifications to the structured log, for hosts
// without a notification surface.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(message string) {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("notification", slog.String("message", message))
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(string) {}
