// Package desktoptest provides an in-memory desktop.Backend.
package desktoptest

import (
	"fmt"
	"sync"

	"kmmacro/src/desktop"
	"kmmacro/src/geometry"
)

// Window is one fake top-level window.
type Window struct {
	Handle uintptr
	Title  string
	Outer  geometry.Rect
	Client geometry.Rect
}

// Backend is a scriptable desktop.Backend. Foreground, when set, overrides
// the active handle for each successive ForegroundWindow call.
type Backend struct {
	mu         sync.Mutex
	Windows    []Window
	MonitorSet []desktop.Monitor
	Active     uintptr
	Foreground []uintptr
	Restored   []uintptr
	// Stubborn makes SetForeground report success without switching.
	Stubborn bool
}

// NewBackend returns a single 1920x1080 monitor desktop with one active
// window.
func NewBackend(w Window) *Backend {
	return &Backend{
		Windows:    []Window{w},
		MonitorSet: []desktop.Monitor{{Rect: geometry.NewRect(0, 1920, 1080, 0), Primary: true, Name: "DISPLAY1"}},
		Active:     w.Handle,
	}
}

func (b *Backend) find(h uintptr) (Window, error) {
	for _, w := range b.Windows {
		if w.Handle == h {
			return w, nil
		}
	}
	return Window{}, fmt.Errorf("no window %#x", h)
}

func (b *Backend) ForegroundWindow() uintptr {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Foreground) > 0 {
		h := b.Foreground[0]
		b.Foreground = b.Foreground[1:]
		return h
	}
	return b.Active
}

func (b *Backend) WindowRect(h uintptr) (geometry.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.find(h)
	return w.Outer, err
}

func (b *Backend) ClientRect(h uintptr) (geometry.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.find(h)
	return w.Client, err
}

func (b *Backend) WindowTitle(h uintptr) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, _ := b.find(h)
	return w.Title
}

func (b *Backend) FindWindow(title string) uintptr {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range b.Windows {
		if w.Title == title {
			return w.Handle
		}
	}
	return 0
}

func (b *Backend) Restore(h uintptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Restored = append(b.Restored, h)
}

func (b *Backend) SetForeground(h uintptr) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.Stubborn {
		b.Active = h
	}
	return true
}

func (b *Backend) Monitors() ([]desktop.Monitor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]desktop.Monitor(nil), b.MonitorSet...), nil
}

// SetActive switches the foreground window.
func (b *Backend) SetActive(h uintptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Active = h
}
