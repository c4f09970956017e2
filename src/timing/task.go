package timing

// Yield is a suspension point. The driver runs its per-tick callback inside
// Yield; a non-nil error means the task must unwind and return it.
type Yield func() error

// Task is a cooperative unit of work. Nested waits delegate by receiving the
// same Yield, so a driver error surfaces at whichever wait is innermost.
type Task func(y Yield) error

// Run drives task to completion, calling onTick at every suspension point.
// A nil onTick only counts as a suspension.
func Run(task Task, onTick func() error) error {
	return task(func() error {
		if onTick == nil {
			return nil
		}
		return onTick()
	})
}
