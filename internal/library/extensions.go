package library

import (
	"strings"
)

// DefaultPrimaryExtensions are container formats treated as primary videos.
var DefaultPrimaryExtensions = []string{
	"mkv", "mp4", "avi", "m4v", "mov", "wmv", "m2ts", "mpg", "mpeg", "ts", "webm", "mvi",
}

// DefaultSidecarExtensions are files attached to a primary by stem.
var DefaultSidecarExtensions = []string{
	"srt", "ass", "ssa", "vtt", "sub", "idx", "sup", "smi", "nfo",
}

// Role is what a file is to the normalizer.
type Role int

const (
	RoleOther Role = iota
	RolePrimary
	RoleSidecar
	RoleOSJunk
)

func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleSidecar:
		return "sidecar"
	case RoleOSJunk:
		return "os-junk"
	default:
		return "other"
	}
}

// Extensions holds the primary and sidecar extension sets, lowercase and
// without the leading dot.
type Extensions struct {
	primary map[string]bool
	sidecar map[string]bool
}

// DefaultExtensions returns the built-in extension sets.
func DefaultExtensions() Extensions {
	return NewExtensions(DefaultPrimaryExtensions, DefaultSidecarExtensions)
}

// NewExtensions builds extension sets. Empty lists fall back to the defaults.
func NewExtensions(primary, sidecar []string) Extensions {
	if len(primary) == 0 {
		primary = DefaultPrimaryExtensions
	}
	if len(sidecar) == 0 {
		sidecar = DefaultSidecarExtensions
	}
	return Extensions{primary: extSet(primary), sidecar: extSet(sidecar)}
}

func extSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimLeft(strings.TrimSpace(e), "."))
		if e != "" {
			set[e] = true
		}
	}
	return set
}

// IsPrimary reports whether ext (with or without dot) is a primary extension.
func (e Extensions) IsPrimary(ext string) bool {
	return e.primary[strings.ToLower(strings.TrimLeft(ext, "."))]
}

// IsSidecar reports whether ext (with or without dot) is a sidecar extension.
func (e Extensions) IsSidecar(ext string) bool {
	return e.sidecar[strings.ToLower(strings.TrimLeft(ext, "."))]
}

// RoleOf classifies a file item.
func (e Extensions) RoleOf(it RawItem) Role {
	switch {
	case IsOSJunk(it.Name()):
		return RoleOSJunk
	case e.IsPrimary(it.Ext):
		return RolePrimary
	case e.IsSidecar(it.Ext):
		return RoleSidecar
	default:
		return RoleOther
	}
}

// IsOSJunk reports operating-system litter: .DS_Store, AppleDouble "._"
// files and Thumbs.db.
func IsOSJunk(name string) bool {
	switch {
	case name == ".DS_Store":
		return true
	case strings.HasPrefix(name, "._"):
		return true
	case strings.EqualFold(name, "Thumbs.db"):
		return true
	}
	return false
}
