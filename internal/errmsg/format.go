// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Queue operations
	OpQueueMove   Op = "move queue item"
	OpQueueRemove Op = "remove queue item"
	OpQueueClear  Op = "clear queue"
	OpPlayNext    Op = "queue track to play next"
	OpQueueAdd    Op = "add to queue"

	// Context operations
	OpContextSwitch Op = "switch playback context"
	OpContextFetch  Op = "fetch more from context"

	// Timeline operations
	OpTimelinePush Op = "update player timeline"

	// State operations
	OpQueueLoad Op = "load saved queue"
	OpQueueSave Op = "save queue"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
