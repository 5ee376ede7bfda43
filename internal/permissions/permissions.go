// Package permissions checks and sets ownership and modes of files that
// apply moves into place.
package permissions

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
)

// Policy is the ownership and modes given to moved files and created
// directories. Negative ids and zero modes leave the existing value alone.
type Policy struct {
	UID      int
	GID      int
	FileMode os.FileMode
	DirMode  os.FileMode
}

// Preserve is the policy that changes nothing.
func Preserve() Policy {
	return Policy{UID: -1, GID: -1}
}

// WantsOwnership reports whether the policy changes uid or gid.
func (p Policy) WantsOwnership() bool {
	return p.UID >= 0 || p.GID >= 0
}

// CanDelete checks if current process has permission to delete a file
func CanDelete(fs afero.Fs, path string) (bool, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	dirInfo, err := fs.Stat(filepath.Dir(path))
	if err != nil {
		return false, err
	}
	if dirInfo.Mode().Perm()&0200 == 0 {
		return false, nil
	}

	// some filesystems refuse to unlink read-only files
	if info.Mode().Perm()&0200 == 0 {
		return false, nil
	}

	return true, nil
}

// Fix applies the policy to path. Directories get DirMode, files FileMode.
func Fix(fs afero.Fs, path string, p Policy) error {
	info, err := fs.Stat(path)
	if err != nil {
		return err
	}

	mode := p.FileMode
	if info.IsDir() {
		mode = p.DirMode
	}
	if mode != 0 && info.Mode().Perm() != mode.Perm() {
		if err := fs.Chmod(path, mode); err != nil {
			return fmt.Errorf("failed to chmod: %w", err)
		}
	}

	if !p.WantsOwnership() {
		return nil
	}
	change, err := NeedsOwnershipChange(fs, path, p.UID, p.GID)
	if err != nil || !change {
		return err
	}

	uid, gid := p.UID, p.GID
	currentUID, currentGID, err := GetFileOwnership(fs, path)
	if err != nil {
		return fmt.Errorf("failed to get current ownership: %w", err)
	}
	if uid < 0 {
		uid = currentUID
	}
	if gid < 0 {
		gid = currentGID
	}
	if err := fs.Chown(path, uid, gid); err != nil {
		return fmt.Errorf("failed to chown (may need sudo): %w", err)
	}
	return nil
}

// GetFileOwnership returns UID and GID of a file
func GetFileOwnership(fs afero.Fs, path string) (int, int, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return -1, -1, err
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return -1, -1, fmt.Errorf("no ownership information for %s", path)
	}

	return int(stat.Uid), int(stat.Gid), nil
}

// NeedsOwnershipChange checks if file ownership differs from target
func NeedsOwnershipChange(fs afero.Fs, path string, targetUID, targetGID int) (bool, error) {
	if targetUID < 0 && targetGID < 0 {
		return false, nil
	}

	currentUID, currentGID, err := GetFileOwnership(fs, path)
	if err != nil {
		return false, err
	}

	if targetUID >= 0 && currentUID != targetUID {
		return true, nil
	}
	if targetGID >= 0 && currentGID != targetGID {
		return true, nil
	}

	return false, nil
}
