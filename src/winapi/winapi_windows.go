//go:build windows

package winapi

import (
	"fmt"
	"log"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"kmmacro/src/desktop"
	"kmmacro/src/geometry"
	"kmmacro/src/screenshot"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	shcore                  = windows.NewLazySystemDLL("Shcore.dll")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetWindowTextLength = user32.NewProc("GetWindowTextLengthW")
	procSetProcessDPIAware  = user32.NewProc("SetProcessDPIAware")
	procSetDpiAwareness     = shcore.NewProc("SetProcessDpiAwareness")
)

// Backend talks to user32 directly. Window rects are reported in physical
// pixels once the process is DPI aware.
type Backend struct{}

// New makes the process per-monitor DPI aware and returns the backend.
func New() (desktop.Backend, error) {
	enableDPIAwareness()
	return &Backend{}, nil
}

// enableDPIAwareness attempts to set per-monitor DPI awareness so window
// rects and captures share one coordinate system.
func enableDPIAwareness() {
	const processPerMonitorDPIAware = 2
	if err := procSetDpiAwareness.Find(); err == nil {
		ret, _, _ := procSetDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret != 0 {
			log.Printf("winapi: SetProcessDpiAwareness failed, error code: %#x", ret)
		}
		return
	}
	log.Printf("winapi: Shcore.SetProcessDpiAwareness not available, trying fallback")
	if err := procSetProcessDPIAware.Find(); err == nil {
		if ret, _, _ := procSetProcessDPIAware.Call(); ret == 0 {
			log.Printf("winapi: SetProcessDPIAware failed")
		}
	} else {
		log.Printf("winapi: SetProcessDPIAware not available, no DPI awareness set")
	}
}

func (*Backend) ForegroundWindow() uintptr {
	return uintptr(win.GetForegroundWindow())
}

func (*Backend) WindowRect(h uintptr) (geometry.Rect, error) {
	var r win.RECT
	if !win.GetWindowRect(win.HWND(h), &r) {
		return geometry.Rect{}, fmt.Errorf("GetWindowRect(%#x) failed", h)
	}
	return rectFromEdges(r.Left, r.Top, r.Right, r.Bottom), nil
}

func (*Backend) ClientRect(h uintptr) (geometry.Rect, error) {
	var r win.RECT
	if !win.GetClientRect(win.HWND(h), &r) {
		return geometry.Rect{}, fmt.Errorf("GetClientRect(%#x) failed", h)
	}
	return rectFromEdges(r.Left, r.Top, r.Right, r.Bottom), nil
}

func (*Backend) WindowTitle(h uintptr) string {
	n, _, _ := procGetWindowTextLength.Call(h)
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(h, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

// FindWindow enumerates top-level windows and returns the first one whose
// title equals title.
func (b *Backend) FindWindow(title string) uintptr {
	var found uintptr
	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if b.WindowTitle(hwnd) == title {
			found = hwnd
			return 0
		}
		return 1
	})
	// EnumWindows reports the early stop as an error.
	if err := windows.EnumWindows(cb, nil); err != nil && found == 0 {
		log.Printf("winapi: EnumWindows: %v", err)
	}
	return found
}

// Restore un-minimizes or un-maximizes h.
func (*Backend) Restore(h uintptr) {
	win.ShowWindow(win.HWND(h), win.SW_RESTORE)
}

func (*Backend) SetForeground(h uintptr) bool {
	return win.SetForegroundWindow(win.HWND(h))
}

func (*Backend) Monitors() ([]desktop.Monitor, error) {
	return screenshot.Monitors()
}
