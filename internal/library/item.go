// Package library turns a directory snapshot into resolution scopes.
//
// A batch of RawItem descriptors is validated, partitioned by parent
// directory and classified into movie, season, ambiguous, empty and excluded
// scopes. Sidecars (subtitles, indexes, metadata) are bound to the primary
// video whose stem they extend. Walk produces the batch from an afero
// filesystem; nothing else in the package performs I/O.
package library

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrNegativeSize = errors.New("negative size")
	ErrRelativePath = errors.New("path is not absolute")
	ErrEmptyPath    = errors.New("empty path")
)

// InvalidItemError reports a malformed item that rejects the whole batch.
type InvalidItemError struct {
	Index int
	Path  string
	Err   error
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("invalid item %d (%q): %v", e.Index, e.Path, e.Err)
}

func (e *InvalidItemError) Unwrap() error {
	return e.Err
}

// RawItem is one entry of a directory snapshot.
type RawItem struct {
	Path  string `json:"path"`
	Dir   string `json:"dir"`
	Size  int64  `json:"size"`
	Ext   string `json:"ext"`
	IsDir bool   `json:"is_dir"`
}

// NewItem builds a RawItem, deriving the parent directory and extension.
func NewItem(path string, size int64, isDir bool) RawItem {
	path = filepath.Clean(path)
	item := RawItem{
		Path:  path,
		Dir:   filepath.Dir(path),
		Size:  size,
		IsDir: isDir,
	}
	if !isDir {
		item.Ext = filepath.Ext(path)
	}
	return item
}

// Name returns the base name.
func (it RawItem) Name() string {
	return filepath.Base(it.Path)
}

// Stem returns the base name without its final extension.
func (it RawItem) Stem() string {
	name := it.Name()
	if it.IsDir {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Validate checks a batch before any work is done. The first malformed item
// is returned as an *InvalidItemError.
func Validate(items []RawItem) error {
	for i, it := range items {
		var err error
		switch {
		case it.Path == "":
			err = ErrEmptyPath
		case !filepath.IsAbs(it.Path):
			err = ErrRelativePath
		case it.Size < 0:
			err = ErrNegativeSize
		}
		if err != nil {
			return &InvalidItemError{Index: i, Path: it.Path, Err: err}
		}
	}
	return nil
}

// normalize fills derived fields that a caller may have left empty.
func normalize(it RawItem) RawItem {
	it.Path = filepath.Clean(it.Path)
	if it.Dir == "" {
		it.Dir = filepath.Dir(it.Path)
	}
	if it.Ext == "" && !it.IsDir {
		it.Ext = filepath.Ext(it.Path)
	}
	return it
}
