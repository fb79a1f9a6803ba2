//go:build !windows

package hook

import (
	"fmt"
	"runtime"

	"github.com/hpungsan/easypass/internal/errors"
)

// System is the platform input hook. Only Windows has one.
type System struct {
	Modifier string
}

// NewSystem returns the platform hook for the given trigger modifier.
func NewSystem(modifier string) *System {
	return &System{Modifier: modifier}
}

// Install always fails off Windows.
func (s *System) Install(*Monitor) error {
	return errors.NewHookInstallFailed(fmt.Errorf("no low-level input hook on %s", runtime.GOOS))
}

// Uninstall is a no-op.
func (s *System) Uninstall() error { return nil }
