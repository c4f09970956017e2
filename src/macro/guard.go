package macro

import (
	"log"
	"sync/atomic"

	"kmmacro/src/desktop"
	"kmmacro/src/input"
)

// KeyPresses reports modifier presses seen by a listener.
type KeyPresses interface {
	PressedSinceLastCall(m input.Modifier) bool
}

// Guard is the per-tick check that stops a running macro. It aborts on the
// abort key or an external abort request, and once the expected window has
// been seen in the foreground it fails when any other window takes over.
type Guard struct {
	keys     KeyPresses
	abortKey input.Modifier
	abort    *atomic.Bool
	desk     *desktop.Desktop
	title    string
	handle   uintptr
}

// NewGuard clears any abort key press that happened before the run.
// abort may be nil.
func NewGuard(keys KeyPresses, abortKey input.Modifier, abort *atomic.Bool, desk *desktop.Desktop, title string) *Guard {
	keys.PressedSinceLastCall(abortKey)
	return &Guard{keys: keys, abortKey: abortKey, abort: abort, desk: desk, title: title}
}

// Tick is the onTick callback for timing.Run.
func (g *Guard) Tick() error {
	if g.keys.PressedSinceLastCall(g.abortKey) {
		log.Printf("guard: aborted by %v key", g.abortKey)
		return ErrAborted
	}
	if g.abort != nil && g.abort.Load() {
		log.Printf("guard: aborted by request")
		return ErrAborted
	}
	w, err := g.desk.ActiveWindow()
	if err != nil {
		return err
	}
	switch {
	case g.handle == 0 && w.Title == g.title:
		g.handle = w.Handle
		log.Printf("guard: watching window %#x", g.handle)
	case g.handle != 0 && w.Handle != g.handle:
		log.Printf("guard: foreground moved from %#x to %#x (%q)", g.handle, w.Handle, w.Title)
		return ErrWindowChanged
	}
	return nil
}
