// Package notifications defines how backend components surface
// user-facing messages and state-change events without depending on
// the transport that delivers them.
package notifications

import "log"

// Notifier delivers a user-facing toast message.
type Notifier interface {
	Notify(level, message string)
}

// Events announces library state changes that the UI should react to.
type Events interface {
	FolderUpdated(folderName string)
}

// Notification levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// LogNotifier writes notifications to the process log. It is the
// fallback sink when no client transport is attached, and the default
// in tests.
type LogNotifier struct{}

func (LogNotifier) Notify(level, message string) {
	log.Printf("[%s] %s", level, message)
}

func (LogNotifier) FolderUpdated(folderName string) {
	log.Printf("Folder updated: %s", folderName)
}
