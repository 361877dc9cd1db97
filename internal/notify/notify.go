// Package notify is the user-facing notification contract. The daemon itself
// does not render UI; the default implementation logs, and a desktop frontend
// can plug in its own Notifier.
package notify

import (
	"fmt"
	"log/slog"
	"time"
)

// Notifier receives user-facing execution notifications.
type Notifier interface {
	Success(title, message string)
	Error(title, message string)
	Info(title, message string)
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Success(title, message string) {
	n.Log.Info("notification", "kind", "success", "title", title, "message", message)
}

func (n LogNotifier) Error(title, message string) {
	n.Log.Warn("notification", "kind", "error", "title", title, "message", message)
}

func (n LogNotifier) Info(title, message string) {
	n.Log.Info("notification", "kind", "info", "title", title, "message", message)
}

// Nop discards all notifications. Used in silent mode and tests.
type Nop struct{}

func (Nop) Success(title, message string) {}
func (Nop) Error(title, message string)   {}
func (Nop) Info(title, message string)    {}

// FormatDuration renders an execution duration for notifications:
// sub-second as milliseconds, under a minute with one decimal, longer as
// minutes and seconds.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		m := int(d.Minutes())
		s := int(d.Seconds()) - m*60
		return fmt.Sprintf("%dm%02ds", m, s)
	}
}

// Truncate shortens a message for notification display.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
