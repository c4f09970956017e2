package geometry

import "fmt"

// PositionInScreen is a coordinate in the virtual desktop. It is negative on
// monitors placed left of or above the primary monitor.
type PositionInScreen struct {
	X int
	Y int
}

func (p PositionInScreen) Move(dx, dy int) PositionInScreen {
	return PositionInScreen{X: p.X + dx, Y: p.Y + dy}
}

func (p PositionInScreen) String() string {
	return fmt.Sprintf("PositionInScreen(%d, %d)", p.X, p.Y)
}

// OffsetInScreen is measured from the top-left of the union of all monitors.
// It addresses pixels of a whole-desktop capture.
type OffsetInScreen struct {
	X int
	Y int
}

// NewOffsetInScreen panics on negative coordinates.
func NewOffsetInScreen(x, y int) OffsetInScreen {
	mustBeNonNegative("OffsetInScreen", x, y)
	return OffsetInScreen{X: x, Y: y}
}

func (o OffsetInScreen) Move(dx, dy int) OffsetInScreen {
	return NewOffsetInScreen(o.X+dx, o.Y+dy)
}

func (o OffsetInScreen) String() string {
	return fmt.Sprintf("OffsetInScreen(%d, %d)", o.X, o.Y)
}

// OffsetInWindow is measured from the top-left of the active window's client
// area.
type OffsetInWindow struct {
	X int
	Y int
}

// NewOffsetInWindow panics on negative coordinates.
func NewOffsetInWindow(x, y int) OffsetInWindow {
	mustBeNonNegative("OffsetInWindow", x, y)
	return OffsetInWindow{X: x, Y: y}
}

func (o OffsetInWindow) Move(dx, dy int) OffsetInWindow {
	return NewOffsetInWindow(o.X+dx, o.Y+dy)
}

func (o OffsetInWindow) String() string {
	return fmt.Sprintf("OffsetInWindow(%d, %d)", o.X, o.Y)
}

func mustBeNonNegative(kind string, x, y int) {
	if x < 0 || y < 0 {
		panic(fmt.Sprintf("geometry: negative %s(%d, %d)", kind, x, y))
	}
}
