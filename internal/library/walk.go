package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// WalkOptions configures Walk.
type WalkOptions struct {
	// IncludeHidden descends into dot-directories and keeps dot-files.
	// OS junk (.DS_Store, ._*) is always kept so it can be cleaned up.
	IncludeHidden bool
	// OnError is called for entries that could not be read; the walk
	// continues. A nil OnError ignores them.
	OnError func(path string, err error)
}

// Walk snapshots every root into a batch of RawItems sorted by path. Roots
// must be absolute. The roots themselves are not included.
func Walk(ctx context.Context, fs afero.Fs, roots []string, opts WalkOptions) ([]RawItem, error) {
	var items []RawItem
	seen := make(map[string]bool)

	for _, root := range roots {
		if root == "" {
			return nil, &InvalidItemError{Path: root, Err: ErrEmptyPath}
		}
		if !filepath.IsAbs(root) {
			return nil, &InvalidItemError{Path: root, Err: ErrRelativePath}
		}
		root = filepath.Clean(root)

		err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil {
				if opts.OnError != nil {
					opts.OnError(path, err)
				}
				return nil
			}
			if path == root {
				return nil
			}

			name := info.Name()
			if !opts.IncludeHidden && strings.HasPrefix(name, ".") && !IsOSJunk(name) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if seen[path] {
				return nil
			}
			seen[path] = true

			size := info.Size()
			if info.IsDir() {
				size = 0
			}
			items = append(items, NewItem(path, size, info.IsDir()))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items, nil
}
