package macro

import (
	"errors"
	"fmt"
)

var (
	// ErrAborted means the operator pressed the abort key or chose Abort in
	// the tray menu.
	ErrAborted = errors.New("aborted by operator")

	// ErrWindowChanged means another window took the foreground while the
	// macro was running.
	ErrWindowChanged = errors.New("active window changed")

	// ErrWindowNotFound means no top-level window has the macro's title.
	ErrWindowNotFound = errors.New("window not found")

	// ErrWindowOffscreen means the target window is not on any monitor.
	ErrWindowOffscreen = errors.New("window is off screen")

	// ErrAbortKeyHeld means a step holds the abort key down, which the
	// listener would report as an abort.
	ErrAbortKeyHeld = errors.New("step holds the abort key")

	// ErrRequirement is matched by every *RequirementError.
	ErrRequirement = errors.New("requirement not met")
)

// RequirementError reports a require step, or a command precondition, whose
// flag did not have the needed value.
type RequirementError struct {
	Step     int
	Flag     string
	Expected bool
}

func (e *RequirementError) Error() string {
	return fmt.Sprintf("step %d: expected %s=%v", e.Step, e.Flag, e.Expected)
}

func (e *RequirementError) Is(target error) bool { return target == ErrRequirement }
