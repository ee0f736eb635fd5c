package monitor

import (
	"os/exec"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// ShutdownActuator performs the protective shutdown. Under normal
// conditions the call does not return before the OS kills the process; if
// it does return an error, the protection failed and the caller must exit
// non-zero.
type ShutdownActuator interface {
	Shutdown() error
}

var _ ShutdownActuator = &SystemShutdown{}

// SystemShutdown invokes the OS shutdown utility.
type SystemShutdown struct {
	path string
}

func NewSystemShutdown() *SystemShutdown {
	return &SystemShutdown{path: "/sbin/shutdown"}
}

func (s *SystemShutdown) Shutdown() error {
	out, err := exec.Command(s.path, "now").CombinedOutput()
	if err != nil {
		return pkgerrors.Wrapf(err, "shutdown invocation failed: %s", strings.TrimSpace(string(out)))
	}
	return nil
}
