package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// rotatingFile appends to a log file and rolls it over once a write would
// take it past maxSize. Backups sit next to it as jellytidy.log.1 (newest)
// through jellytidy.log.<maxBackups>; older ones are removed.
type rotatingFile struct {
	path       string
	maxSize    int64
	maxBackups int

	file *os.File
	size int64
}

func openRotating(path string, maxSize int64, maxBackups int) (*rotatingFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	r := &rotatingFile{path: path, maxSize: maxSize, maxBackups: maxBackups}
	if err := r.open(); err != nil {
		return nil, err
	}
	// a lowered max_backups takes effect on the next start
	r.prune()
	return r, nil
}

func (r *rotatingFile) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("unable to stat log file: %w", err)
	}
	r.file = f
	r.size = info.Size()
	return nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	if r.file == nil {
		return 0, os.ErrClosed
	}
	if r.maxSize > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// rotate shifts every backup up by one and starts an empty log. With no
// backups allowed the current log is simply truncated.
func (r *rotatingFile) rotate() error {
	if err := r.file.Close(); err != nil {
		return err
	}
	r.file = nil

	if r.maxBackups <= 0 {
		if err := os.Truncate(r.path, 0); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to truncate log: %w", err)
		}
		return r.open()
	}

	if err := os.Remove(r.backup(r.maxBackups)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to drop oldest log: %w", err)
	}
	for n := r.maxBackups - 1; n >= 1; n-- {
		err := os.Rename(r.backup(n), r.backup(n+1))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to shift %s: %w", r.backup(n), err)
		}
	}
	if err := os.Rename(r.path, r.backup(1)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to rotate log: %w", err)
	}
	return r.open()
}

func (r *rotatingFile) backup(n int) string {
	return r.path + "." + strconv.Itoa(n)
}

// backups lists the backup numbers present on disk, in no particular order.
func (r *rotatingFile) backups() []int {
	entries, err := os.ReadDir(filepath.Dir(r.path))
	if err != nil {
		return nil
	}
	prefix := filepath.Base(r.path) + "."
	var out []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
		if err != nil || n < 1 {
			continue
		}
		out = append(out, n)
	}
	return out
}

// prune removes backups beyond maxBackups.
func (r *rotatingFile) prune() {
	for _, n := range r.backups() {
		if n > r.maxBackups {
			os.Remove(r.backup(n))
		}
	}
}

func (r *rotatingFile) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
