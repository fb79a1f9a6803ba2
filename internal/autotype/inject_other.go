//go:build !windows

package autotype

import (
	"fmt"
	"runtime"
)

// Unsupported is the injector on platforms without keystroke injection.
type Unsupported struct{}

// NewSystem returns the platform injector.
func NewSystem() Injector {
	return Unsupported{}
}

func (Unsupported) TypeText(string) error {
	return fmt.Errorf("keystroke injection not supported on %s", runtime.GOOS)
}

func (Unsupported) PressKey(Key) error {
	return fmt.Errorf("keystroke injection not supported on %s", runtime.GOOS)
}
