// Package privilege re-executes jellytidy under sudo when a plan needs root,
// e.g. to hand moved files to another owner.
package privilege

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/Nomadcxx/jellytidy/internal/permissions"
)

// NeedsRoot returns true if the current process is not running as root.
func NeedsRoot() bool {
	return os.Geteuid() != 0
}

// RequiredFor reports whether applying with policy needs root. Only
// changing ownership does; modes can be set by the file owner.
func RequiredFor(p permissions.Policy) bool {
	return p.WantsOwnership() && NeedsRoot()
}

// Command builds the sudo argv for re-running args. SUDO_USER is set by sudo
// itself, so per-user paths keep pointing at the invoking user.
func Command(sudoPath string, args []string) []string {
	return append([]string{sudoPath}, args...)
}

// Escalate replaces the process with sudo running the same command line.
// It only returns on failure.
func Escalate(w io.Writer, reason string) error {
	sudoPath, err := exec.LookPath("sudo")
	if err != nil {
		return fmt.Errorf("sudo not found in PATH: %w", err)
	}

	fmt.Fprintf(w, "Root privileges required to %s.\n", reason)
	fmt.Fprintln(w, "Requesting sudo access...")
	fmt.Fprintln(w)

	return syscall.Exec(sudoPath, Command(sudoPath, os.Args), os.Environ())
}
