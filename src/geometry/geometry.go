// Package geometry holds the rectangle and point value types shared by the
// coordinate transforms, input synthesis and pixel inference.
package geometry

import "fmt"

// Rect is an axis-aligned rectangle. Fields follow the CSS edge order.
type Rect struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// NewRect panics unless top <= bottom and left <= right.
func NewRect(top, right, bottom, left int) Rect {
	r := Rect{Top: top, Right: right, Bottom: bottom, Left: left}
	r.mustBeOrdered()
	return r
}

func (r Rect) mustBeOrdered() {
	if r.Top > r.Bottom || r.Left > r.Right {
		panic(fmt.Sprintf("geometry: inverted rect %v", r))
	}
}

func (r Rect) mustHaveArea() {
	r.mustBeOrdered()
	if r.Width() == 0 || r.Height() == 0 {
		panic(fmt.Sprintf("geometry: degenerate rect %v", r))
	}
}

// Width may be zero.
func (r Rect) Width() int { return r.Right - r.Left }

// Height may be zero.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Corners returns (left,top), (left,bottom), (right,top), (right,bottom).
func (r Rect) Corners() [4][2]int {
	return [4][2]int{
		{r.Left, r.Top},
		{r.Left, r.Bottom},
		{r.Right, r.Top},
		{r.Right, r.Bottom},
	}
}

// Includes reports whether (x, y) lies in [Left,Right) x [Top,Bottom).
// It panics on a rect with zero width or height.
func (r Rect) Includes(x, y int) bool {
	r.mustHaveArea()
	return r.Left <= x && x < r.Right && r.Top <= y && y < r.Bottom
}

// IsIntersect reports whether any corner of either rect is included in the
// other. For axis-aligned rects with area this misses only the "cross"
// configuration where neither rect holds a corner of the other.
func (r Rect) IsIntersect(other Rect) bool {
	r.mustHaveArea()
	other.mustHaveArea()
	for _, c := range r.Corners() {
		if other.Includes(c[0], c[1]) {
			return true
		}
	}
	for _, c := range other.Corners() {
		if r.Includes(c[0], c[1]) {
			return true
		}
	}
	return false
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect(top=%d, right=%d, bottom=%d, left=%d)", r.Top, r.Right, r.Bottom, r.Left)
}
