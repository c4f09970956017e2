package desktop

import (
	"errors"
	"fmt"
	"log"
	"time"

	"kmmacro/src/geometry"
	"kmmacro/src/timing"
)

// DefaultSwitchTimeout bounds the wait for a window switch to settle.
const DefaultSwitchTimeout = 500 * time.Millisecond

var (
	// ErrWindowSwitchTimeout means no window (or not the requested one) became
	// the foreground window in time.
	ErrWindowSwitchTimeout = errors.New("timed out waiting for window switch")

	// ErrWindowMismatch means the foreground window is not the expected one.
	ErrWindowMismatch = errors.New("active window does not match")

	// ErrUnsupported is returned by backends on platforms without window APIs.
	ErrUnsupported = errors.New("desktop automation is not supported on this platform")
)

// Backend is the OS window manager surface the desktop layer needs.
// Handles are zero when no window applies.
type Backend interface {
	ForegroundWindow() uintptr
	WindowRect(h uintptr) (geometry.Rect, error)
	ClientRect(h uintptr) (geometry.Rect, error)
	WindowTitle(h uintptr) string
	FindWindow(title string) uintptr
	Restore(h uintptr)
	SetForeground(h uintptr) bool
	Monitors() ([]Monitor, error)
}

// Desktop answers window and screen queries with fresh snapshots.
type Desktop struct {
	backend       Backend
	sched         *timing.Scheduler
	switchTimeout time.Duration
}

func New(backend Backend, sched *timing.Scheduler) *Desktop {
	return &Desktop{backend: backend, sched: sched, switchTimeout: DefaultSwitchTimeout}
}

// SetSwitchTimeout overrides DefaultSwitchTimeout.
func (d *Desktop) SetSwitchTimeout(timeout time.Duration) {
	if timeout > 0 {
		d.switchTimeout = timeout
	}
}

// ActiveWindow snapshots the foreground window. During a window switch the
// OS briefly reports no foreground window; that is retried until the switch
// timeout.
func (d *Desktop) ActiveWindow() (WindowInfo, error) {
	start := d.sched.Clock.Now()
	h := d.backend.ForegroundWindow()
	for h == 0 {
		if d.sched.Clock.Now().Sub(start) > d.switchTimeout {
			return WindowInfo{}, ErrWindowSwitchTimeout
		}
		d.sched.BlockMoment()
		h = d.backend.ForegroundWindow()
	}
	return d.windowInfo(h)
}

func (d *Desktop) windowInfo(h uintptr) (WindowInfo, error) {
	client, err := d.backend.ClientRect(h)
	if err != nil {
		return WindowInfo{}, fmt.Errorf("client rect of %#x: %w", h, err)
	}
	outer, err := d.backend.WindowRect(h)
	if err != nil {
		return WindowInfo{}, fmt.Errorf("window rect of %#x: %w", h, err)
	}
	return NewWindowInfo(h, d.backend.WindowTitle(h), outer, client), nil
}

func (d *Desktop) Screen() (ScreenInfo, error) {
	monitors, err := d.backend.Monitors()
	if err != nil {
		return ScreenInfo{}, fmt.Errorf("enumerate monitors: %w", err)
	}
	if len(monitors) == 0 {
		return ScreenInfo{}, errors.New("no active monitors")
	}
	return NewScreenInfo(monitors), nil
}

// Activate brings the window titled title to the foreground. It returns
// false when no such window exists.
func (d *Desktop) Activate(title string) (bool, error) {
	if title == "" {
		panic("desktop: empty window title")
	}
	h := d.backend.FindWindow(title)
	if h == 0 {
		return false, nil
	}
	d.backend.Restore(h)
	if !d.backend.SetForeground(h) {
		log.Printf("desktop: SetForeground(%#x) was refused, waiting anyway", h)
	}
	start := d.sched.Clock.Now()
	for d.backend.ForegroundWindow() != h {
		if d.sched.Clock.Now().Sub(start) > d.switchTimeout {
			return false, ErrWindowSwitchTimeout
		}
		d.sched.BlockMoment()
	}
	d.sched.BlockMoment()
	return true, nil
}

// WaitForTitle polls every 500ms until the foreground window has the given
// title and returns its snapshot.
func (d *Desktop) WaitForTitle(y timing.Yield, title string) (WindowInfo, error) {
	for {
		w, err := d.ActiveWindow()
		if err != nil {
			return WindowInfo{}, err
		}
		if w.Title == title {
			return w, nil
		}
		if err := d.sched.Sleep(y, 500*time.Millisecond); err != nil {
			return WindowInfo{}, err
		}
	}
}

// CheckTitle fails with ErrWindowMismatch unless w has the expected title.
func CheckTitle(w WindowInfo, expected string) error {
	if w.Title != expected {
		return fmt.Errorf("%w: got %q, expected %q", ErrWindowMismatch, w.Title, expected)
	}
	return nil
}

func (d *Desktop) resolve(window *WindowInfo, screen *ScreenInfo) (WindowInfo, ScreenInfo, error) {
	var w WindowInfo
	var s ScreenInfo
	var err error
	if window != nil {
		w = *window
	} else if w, err = d.ActiveWindow(); err != nil {
		return w, s, err
	}
	if screen != nil {
		s = *screen
	} else if s, err = d.Screen(); err != nil {
		return w, s, err
	}
	return w, s, nil
}

// ToWindowOffset converts pos with the given snapshots; nil snapshots are
// fetched fresh.
func (d *Desktop) ToWindowOffset(pos geometry.PositionInScreen, window *WindowInfo, screen *ScreenInfo) (geometry.OffsetInWindow, error) {
	w, s, err := d.resolve(window, screen)
	if err != nil {
		return geometry.OffsetInWindow{}, err
	}
	return ScreenToWindowOffset(pos, w, s), nil
}

func (d *Desktop) FromWindowOffset(off geometry.OffsetInWindow, window *WindowInfo, screen *ScreenInfo) (geometry.PositionInScreen, error) {
	w, s, err := d.resolve(window, screen)
	if err != nil {
		return geometry.PositionInScreen{}, err
	}
	return WindowOffsetToScreen(off, w, s), nil
}

func (d *Desktop) ToScreenOffset(pos geometry.PositionInScreen, screen *ScreenInfo) (geometry.OffsetInScreen, error) {
	s, err := d.screenOrFresh(screen)
	if err != nil {
		return geometry.OffsetInScreen{}, err
	}
	return ScreenToScreenOffset(pos, s), nil
}

func (d *Desktop) FromScreenOffset(off geometry.OffsetInScreen, screen *ScreenInfo) (geometry.PositionInScreen, error) {
	s, err := d.screenOrFresh(screen)
	if err != nil {
		return geometry.PositionInScreen{}, err
	}
	return ScreenOffsetToScreen(off, s), nil
}

func (d *Desktop) screenOrFresh(screen *ScreenInfo) (ScreenInfo, error) {
	if screen != nil {
		return *screen, nil
	}
	return d.Screen()
}
