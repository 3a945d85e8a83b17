package ui

import "slices"

// MessageLog keeps the most recent combat messages for the HUD.
type MessageLog struct {
	lines []string
	max   int
}

// NewMessageLog keeps up to max messages.
func NewMessageLog(max int) *MessageLog {
	if max < 1 {
		max = 1
	}
	return &MessageLog{max: max}
}

// Post appends msg, dropping the oldest message when full. Repeats of the
// newest message are collapsed.
func (l *MessageLog) Post(msg string) {
	if msg == "" {
		return
	}
	if n := len(l.lines); n > 0 && l.lines[n-1] == msg {
		return
	}
	if len(l.lines) == l.max {
		l.lines = slices.Delete(l.lines, 0, 1)
	}
	l.lines = append(l.lines, msg)
}

// Lines returns the messages oldest first.
func (l *MessageLog) Lines() []string { return slices.Clone(l.lines) }

// Clear drops every message.
func (l *MessageLog) Clear() { l.lines = l.lines[:0] }
