package reactive

import "errors"

// ErrTypeMismatch is returned by SetAny when the value cannot be converted
// to the signal's element type.
var ErrTypeMismatch = errors.New("lumen: value type does not match signal type")

// ErrLoopStopped is returned when a task is posted to a Loop that is no
// longer running.
var ErrLoopStopped = errors.New("lumen: event loop stopped")

// ErrTaskPanicked is returned by Loop.Do when the task panicked.
var ErrTaskPanicked = errors.New("lumen: loop task panicked")
