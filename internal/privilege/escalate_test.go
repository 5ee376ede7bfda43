package privilege

import (
	"os"
	"testing"

	"github.com/Nomadcxx/jellytidy/internal/permissions"
)

func TestNeedsRoot(t *testing.T) {
	if got, want := NeedsRoot(), os.Geteuid() != 0; got != want {
		t.Errorf("NeedsRoot() = %v, want %v", got, want)
	}
}

func TestRequiredFor(t *testing.T) {
	if RequiredFor(permissions.Preserve()) {
		t.Error("RequiredFor(Preserve()) = true, want false")
	}

	chown := permissions.Policy{UID: 1000, GID: -1}
	if got, want := RequiredFor(chown), os.Geteuid() != 0; got != want {
		t.Errorf("RequiredFor(chown) = %v, want %v", got, want)
	}

	modeOnly := permissions.Policy{UID: -1, GID: -1, FileMode: 0644}
	if RequiredFor(modeOnly) {
		t.Error("RequiredFor(mode only) = true, want false")
	}
}

func TestCommand(t *testing.T) {
	got := Command("/usr/bin/sudo", []string{"jellytidy", "apply", "--yes"})
	want := []string{"/usr/bin/sudo", "jellytidy", "apply", "--yes"}
	if len(got) != len(want) {
		t.Fatalf("Command() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Command()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
