package vetting

import (
	"context"
	"io"
	"log/slog"
)

// Priority of a user-facing notification.
type Priority int

const (
	PriorityNormal Priority = 0
	PriorityHigh   Priority = 2
)

// Notification is what a desktop integration would show for a verdict.
type Notification struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Priority Priority `json:"priority"`
}

// PriorityFor returns PriorityHigh for unsafe domains.
func PriorityFor(status Status) Priority {
	if status == StatusUnsafe {
		return PriorityHigh
	}
	return PriorityNormal
}

// NotificationFor builds the notification for a verdict.
func NotificationFor(v DomainVerdict) Notification {
	return Notification{
		Title:    "Security Alert: " + v.Domain,
		Message:  "This site is classified as " + v.Status.Label(),
		Priority: PriorityFor(v.Status),
	}
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// NewLogNotifier returns a LogNotifier. Pass nil to discard output.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogNotifier{Logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, note Notification) error {
	level := slog.LevelInfo
	if note.Priority == PriorityHigh {
		level = slog.LevelWarn
	}
	n.Logger.Log(ctx, level, note.Title, "message", note.Message, "priority", int(note.Priority))
	return nil
}
