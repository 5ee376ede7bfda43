package apply

import (
	"syscall"
)

// sameDevice reports whether two existing paths live on the same
// filesystem. Filesystems without device information (in-memory ones)
// count as a single device.
func (a *Applier) sameDevice(x, y string) (bool, error) {
	xi, err := a.fs.Stat(x)
	if err != nil {
		return false, err
	}
	yi, err := a.fs.Stat(y)
	if err != nil {
		return false, err
	}

	xs, ok1 := xi.Sys().(*syscall.Stat_t)
	ys, ok2 := yi.Sys().(*syscall.Stat_t)
	if !ok1 || !ok2 {
		return true, nil
	}
	return xs.Dev == ys.Dev, nil
}
