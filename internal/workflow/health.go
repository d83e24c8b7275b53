package workflow

import (
	"errors"
	"fmt"
)

// HealthCheck reports whether the loop is running and the last cycle succeeded.
// Transport failures are expected to clear on the next cycle and do not fail
// the check.
func (m *Manager) HealthCheck() error {
	status := m.Status()
	if !status.Running {
		return errors.New("reply loop not running")
	}
	switch status.LastErrorKind {
	case "", "none", "transport", "forbidden":
		return nil
	default:
		return fmt.Errorf("last cycle failed (%s): %s", status.LastErrorKind, status.LastError)
	}
}
