package desktop

import (
	"fmt"

	"kmmacro/src/geometry"
)

// ScreenToScreenOffset maps a screen position into whole-desktop capture
// coordinates.
func ScreenToScreenOffset(pos geometry.PositionInScreen, screen ScreenInfo) geometry.OffsetInScreen {
	x := screen.Origin.X + pos.X
	y := screen.Origin.Y + pos.Y
	if x < 0 || y < 0 || x >= screen.Size.Width || y >= screen.Size.Height {
		panic(fmt.Sprintf("desktop: %v is outside the screen %v", pos, screen.Box))
	}
	return geometry.NewOffsetInScreen(x, y)
}

// ScreenOffsetToScreen is the inverse of ScreenToScreenOffset.
func ScreenOffsetToScreen(off geometry.OffsetInScreen, screen ScreenInfo) geometry.PositionInScreen {
	if off.X >= screen.Size.Width || off.Y >= screen.Size.Height {
		panic(fmt.Sprintf("desktop: %v is outside the screen size %+v", off, screen.Size))
	}
	pos := geometry.PositionInScreen{X: off.X - screen.Origin.X, Y: off.Y - screen.Origin.Y}
	if !screen.Box.Includes(pos.X, pos.Y) {
		panic(fmt.Sprintf("desktop: %v is outside the screen %v", pos, screen.Box))
	}
	return pos
}

// ScreenToWindowOffset maps a screen position inside the window's client
// area to a client offset. The window may extend past the screen edge, so
// the position is checked against both.
func ScreenToWindowOffset(pos geometry.PositionInScreen, window WindowInfo, screen ScreenInfo) geometry.OffsetInWindow {
	if !screen.Box.Includes(pos.X, pos.Y) {
		panic(fmt.Sprintf("desktop: %v is outside the screen %v", pos, screen.Box))
	}
	if !window.Rect.Includes(pos.X, pos.Y) {
		panic(fmt.Sprintf("desktop: %v is outside the window %v", pos, window.Rect))
	}
	x := pos.X - window.Rect.Left - window.Padding.Left
	y := pos.Y - window.Rect.Top - window.Padding.Top
	if !window.Client.Includes(x, y) {
		panic(fmt.Sprintf("desktop: %v is outside the client area %v", pos, window.Client))
	}
	return geometry.NewOffsetInWindow(x, y)
}

// WindowOffsetToScreen is the inverse of ScreenToWindowOffset.
func WindowOffsetToScreen(off geometry.OffsetInWindow, window WindowInfo, screen ScreenInfo) geometry.PositionInScreen {
	if !window.Client.Includes(off.X, off.Y) {
		panic(fmt.Sprintf("desktop: %v is outside the client area %v", off, window.Client))
	}
	pos := window.ClientOrigin().Move(off.X, off.Y)
	if !screen.Box.Includes(pos.X, pos.Y) {
		panic(fmt.Sprintf("desktop: %v is outside the screen %v", pos, screen.Box))
	}
	return pos
}
