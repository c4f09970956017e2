// Package winapi is the desktop.Backend backed by the Windows window
// manager.
package winapi

import "kmmacro/src/geometry"

// rectFromEdges converts Win32 RECT edges into a geometry.Rect.
func rectFromEdges(left, top, right, bottom int32) geometry.Rect {
	return geometry.NewRect(int(top), int(right), int(bottom), int(left))
}
