package task

// Status is the lifecycle state of a Task.
type Status uint8

const (
	// NotStarted means the task has been created but never resumed.
	NotStarted Status = iota
	// Suspended means the task yielded and is waiting for its next resume.
	Suspended
	// Done means the task body returned; its result is available.
	Done
	// Cancelled means the task was killed, cancelled by a predicate, or
	// its body panicked.
	Cancelled
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Suspended:
		return "suspended"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the status is Done or Cancelled.
func (s Status) IsTerminal() bool {
	return s == Done || s == Cancelled
}
