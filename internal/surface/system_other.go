//go:build !windows

package surface

import "github.com/hpungsan/easypass/internal/picker"

// NewSystem returns the native surface. Without one, the headless Log
// surface dismisses every session.
func NewSystem() picker.Surface {
	return NewLog(0)
}

// Close releases native resources. Nothing to release here.
func Close(picker.Surface) {}
