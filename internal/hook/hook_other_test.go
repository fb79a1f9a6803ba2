//go:build !windows

package hook

import (
	"testing"

	"github.com/hpungsan/easypass/internal/errors"
)

func TestSystem_InstallFailsOffWindows(t *testing.T) {
	s := NewSystem("ctrl")

	err := s.Install(NewMonitor(&recordingSink{}, nil))
	if !errors.Is(err, errors.ErrHookInstallFailed) {
		t.Errorf("Install error = %v, want HOOK_INSTALL_FAILED", err)
	}

	// Uninstall is idempotent
	for i := 0; i < 2; i++ {
		if err := s.Uninstall(); err != nil {
			t.Errorf("Uninstall #%d error = %v", i+1, err)
		}
	}
}
