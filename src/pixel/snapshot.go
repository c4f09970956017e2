package pixel

import (
	"fmt"
	"image"
	"iter"

	"kmmacro/src/desktop"
	"kmmacro/src/geometry"
)

// Capturer grabs a rectangle of the desktop given in screen positions.
type Capturer interface {
	Capture(r geometry.Rect) (*image.RGBA, error)
}

// Snapshot is one capture together with the window and screen layout it was
// taken under.
type Snapshot struct {
	Screen     desktop.ScreenInfo
	Window     desktop.WindowInfo
	Image      *image.RGBA
	AllScreens bool
}

// Take captures the active window's client area, or the whole desktop when
// allScreens is set.
func Take(d *desktop.Desktop, c Capturer, allScreens bool) (*Snapshot, error) {
	screen, err := d.Screen()
	if err != nil {
		return nil, err
	}
	window, err := d.ActiveWindow()
	if err != nil {
		return nil, err
	}
	s := &Snapshot{Screen: screen, Window: window, AllScreens: allScreens}

	var rect geometry.Rect
	var w, h int
	if allScreens {
		rect, w, h = screen.Box, screen.Size.Width, screen.Size.Height
	} else {
		if window.Client.Width() == 0 || window.Client.Height() == 0 {
			return nil, fmt.Errorf("window %q has an empty client area", window.Title)
		}
		rect, w, h = window.ClientBounds(), window.Client.Width(), window.Client.Height()
	}
	if s.Image, err = c.Capture(rect); err != nil {
		return nil, err
	}
	if b := s.Image.Bounds(); b.Dx() != w || b.Dy() != h {
		return nil, fmt.Errorf("capture is %dx%d, expected %dx%d", b.Dx(), b.Dy(), w, h)
	}
	return s, nil
}

// GetPixel reads the color at a client offset.
func (s *Snapshot) GetPixel(off geometry.OffsetInWindow) Color {
	if !s.Window.Client.Includes(off.X, off.Y) {
		panic(fmt.Sprintf("pixel: %v is outside the client area %v", off, s.Window.Client))
	}
	if s.AllScreens {
		pos := desktop.WindowOffsetToScreen(off, s.Window, s.Screen)
		so := desktop.ScreenToScreenOffset(pos, s.Screen)
		return colorAt(s.Image, so.X, so.Y)
	}
	return colorAt(s.Image, off.X-s.Window.Client.Left, off.Y-s.Window.Client.Top)
}

// SearchPixel looks for expected in the width x height box centred on
// center and returns the first hit in row-major order. A zero height means a
// square box. Both sizes must be even and positive.
func (s *Snapshot) SearchPixel(expected Color, center geometry.OffsetInWindow, width, height int) (geometry.OffsetInWindow, bool) {
	if height == 0 {
		height = width
	}
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		panic(fmt.Sprintf("pixel: search box %dx%d must be even and positive", width, height))
	}
	base := center.Move(-width/2, -height/2)
	for off := range s.ScanPixel(expected, base, width, height) {
		return off, true
	}
	return geometry.OffsetInWindow{}, false
}

// ScanPixel yields every offset in the box at base whose color is expected.
func (s *Snapshot) ScanPixel(expected Color, base geometry.OffsetInWindow, width, height int) iter.Seq[geometry.OffsetInWindow] {
	if height == 0 {
		height = width
	}
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("pixel: scan box %dx%d must be positive", width, height))
	}
	return func(yield func(geometry.OffsetInWindow) bool) {
		for dy := 0; dy < height; dy++ {
			for dx := 0; dx < width; dx++ {
				off := base.Move(dx, dy)
				if s.GetPixel(off) == expected && !yield(off) {
					return
				}
			}
		}
	}
}
