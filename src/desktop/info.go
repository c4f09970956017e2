// Package desktop models window and monitor snapshots and converts between
// screen positions, screen offsets and window client offsets.
package desktop

import (
	"fmt"

	"kmmacro/src/geometry"
)

// Padding is the chrome thickness between a window's outer rect and its
// client area. Left and right are assumed symmetric.
type Padding struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// WindowInfo is a snapshot of one window. It goes stale as soon as the window
// moves, so callers re-query instead of caching it across waits.
type WindowInfo struct {
	Handle  uintptr
	Title   string
	Rect    geometry.Rect // outer rect, in screen positions
	Padding Padding
	Client  geometry.Rect // client rect, in client coordinates
}

// NewWindowInfo derives the padding from the outer and client rects. It
// panics when the chrome does not fit the symmetric-border model.
func NewWindowInfo(handle uintptr, title string, outer, client geometry.Rect) WindowInfo {
	var width, diffY int
	if client.Width() != 0 && client.Height() != 0 {
		diffX := outer.Width() - client.Width() - client.Left
		if diffX < 0 || diffX%2 != 0 {
			panic(fmt.Sprintf("desktop: unsupported horizontal chrome %d (outer %v, client %v)", diffX, outer, client))
		}
		width = diffX / 2
		diffY = outer.Height() - client.Height() - client.Top
		if diffY < width {
			panic(fmt.Sprintf("desktop: unsupported vertical chrome %d < %d (outer %v, client %v)", diffY, width, outer, client))
		}
	}
	return WindowInfo{
		Handle: handle,
		Title:  title,
		Rect:   outer,
		Padding: Padding{
			Top:    diffY - width,
			Right:  width,
			Bottom: width,
			Left:   width,
		},
		Client: client,
	}
}

// ClientOrigin is the screen position of client offset (0, 0).
func (w WindowInfo) ClientOrigin() geometry.PositionInScreen {
	return geometry.PositionInScreen{X: w.Rect.Left + w.Padding.Left, Y: w.Rect.Top + w.Padding.Top}
}

// ClientBounds is the client area expressed in screen positions.
func (w WindowInfo) ClientBounds() geometry.Rect {
	o := w.ClientOrigin()
	return geometry.NewRect(o.Y+w.Client.Top, o.X+w.Client.Right, o.Y+w.Client.Bottom, o.X+w.Client.Left)
}

func (w WindowInfo) String() string {
	return fmt.Sprintf("WindowInfo(handle=%#x, title=%q, rect=%v, padding=%+v, client=%v)",
		w.Handle, w.Title, w.Rect, w.Padding, w.Client)
}

type Monitor struct {
	Rect    geometry.Rect
	Primary bool
	Name    string
}

type Origin struct {
	X int
	Y int
}

type Size struct {
	Width  int
	Height int
}

// ScreenInfo is a snapshot of the monitor layout.
type ScreenInfo struct {
	// Origin translates screen positions into non-negative screen offsets.
	Origin   Origin
	Size     Size
	Box      geometry.Rect // union of all monitors
	Monitors []Monitor
}

// NewScreenInfo computes the union of monitors. The primary monitor sits at
// the desktop origin, so the union must contain (0, 0).
func NewScreenInfo(monitors []Monitor) ScreenInfo {
	if len(monitors) == 0 {
		panic("desktop: no monitors")
	}
	box := monitors[0].Rect
	for _, m := range monitors[1:] {
		box.Top = min(box.Top, m.Rect.Top)
		box.Right = max(box.Right, m.Rect.Right)
		box.Bottom = max(box.Bottom, m.Rect.Bottom)
		box.Left = min(box.Left, m.Rect.Left)
	}
	if box.Top > 0 || box.Left > 0 || box.Right <= 0 || box.Bottom <= 0 {
		panic(fmt.Sprintf("desktop: monitor union %v does not contain the origin", box))
	}
	return ScreenInfo{
		Origin:   Origin{X: -box.Left, Y: -box.Top},
		Size:     Size{Width: box.Width(), Height: box.Height()},
		Box:      box,
		Monitors: monitors,
	}
}

// Primary returns the primary monitor, or the first one when none is flagged.
func (s ScreenInfo) Primary() Monitor {
	for _, m := range s.Monitors {
		if m.Primary {
			return m
		}
	}
	return s.Monitors[0]
}
