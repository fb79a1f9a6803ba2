//go:build !windows

package hook

// CursorPos is unavailable off Windows.
func CursorPos() (Point, bool) {
	return Point{}, false
}
