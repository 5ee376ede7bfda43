package library

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Nomadcxx/jellytidy/internal/naming"
)

// ExcludedDirName marks a subtree that is never normalized. The match is
// exact and case-sensitive.
const ExcludedDirName = "BONUS_FEATURES"

var seasonDirRegex = regexp.MustCompile(`(?i)^season\s*_?0?\d+\b`)

// ScopeKind is the classification of one directory.
type ScopeKind int

const (
	ScopeEmpty ScopeKind = iota
	ScopeMovie
	ScopeSeason
	ScopeAmbiguous
	ScopeExcluded
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeMovie:
		return "movie"
	case ScopeSeason:
		return "season"
	case ScopeAmbiguous:
		return "ambiguous"
	case ScopeExcluded:
		return "excluded"
	default:
		return "empty"
	}
}

// Scope is one directory and the files directly inside it. Every slice is
// sorted by path.
type Scope struct {
	Dir  string
	Kind ScopeKind

	// Season scopes only: the season directory (Dir or an ancestor) and the
	// show name, which is the season directory's parent name verbatim.
	SeasonDir string
	Show      string

	Entities []Entity
	Orphans  []RawItem
	// Unscoped holds primaries with an episode marker outside a season
	// directory.
	Unscoped []RawItem
	OSJunk   []RawItem
	Other    []RawItem
	// Excluded holds files passed through untouched.
	Excluded []RawItem
}

// Primaries returns the scope's primary videos in path order.
func (s Scope) Primaries() []RawItem {
	out := make([]RawItem, 0, len(s.Entities))
	for _, e := range s.Entities {
		out = append(out, e.Primary)
	}
	return out
}

// Grouper partitions a batch into scopes.
type Grouper struct {
	ext   Extensions
	vocab *naming.Vocabulary
}

// GrouperOption configures a Grouper.
type GrouperOption func(*Grouper)

// WithExtensions replaces the primary/sidecar extension sets.
func WithExtensions(ext Extensions) GrouperOption {
	return func(g *Grouper) {
		g.ext = ext
	}
}

// WithVocabulary sets the vocabulary used to spot episode markers.
func WithVocabulary(v *naming.Vocabulary) GrouperOption {
	return func(g *Grouper) {
		if v != nil {
			g.vocab = v
		}
	}
}

// NewGrouper creates a Grouper with the default extension sets.
func NewGrouper(opts ...GrouperOption) *Grouper {
	g := &Grouper{
		ext:   DefaultExtensions(),
		vocab: naming.DefaultVocabulary(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Extensions returns the grouper's extension sets.
func (g *Grouper) Extensions() Extensions {
	return g.ext
}

// Group partitions items with the default Grouper.
func Group(items []RawItem) ([]Scope, error) {
	return NewGrouper().Group(items)
}

// Group validates the batch and partitions its file items by parent
// directory. Directory items only contribute structure. Scopes are returned
// sorted by directory.
func (g *Grouper) Group(items []RawItem) ([]Scope, error) {
	if err := Validate(items); err != nil {
		return nil, err
	}

	byDir := make(map[string][]RawItem)
	for _, it := range items {
		if it.IsDir {
			continue
		}
		it = normalize(it)
		byDir[it.Dir] = append(byDir[it.Dir], it)
	}

	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	scopes := make([]Scope, 0, len(dirs))
	for _, d := range dirs {
		files := byDir[d]
		sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
		scopes = append(scopes, g.classify(d, files))
	}
	return scopes, nil
}

func (g *Grouper) classify(dir string, files []RawItem) Scope {
	s := Scope{Dir: dir}

	if IsExcludedPath(dir) {
		s.Kind = ScopeExcluded
		s.Excluded = files
		return s
	}

	s.SeasonDir, s.Show = seasonOf(dir)

	var primaries, sidecars []RawItem
	for _, f := range files {
		if f.Name() == ExcludedDirName {
			s.Excluded = append(s.Excluded, f)
			continue
		}
		switch g.ext.RoleOf(f) {
		case RolePrimary:
			primaries = append(primaries, f)
		case RoleSidecar:
			sidecars = append(sidecars, f)
		case RoleOSJunk:
			s.OSJunk = append(s.OSJunk, f)
		default:
			s.Other = append(s.Other, f)
		}
	}

	// Outside a season directory, episode-marked files are set aside and
	// only the rest decide the scope kind. Their sidecars still bind to them.
	var movieLike []RawItem
	if s.SeasonDir == "" {
		for _, p := range primaries {
			if g.hasEpisodeMarker(p.Stem()) {
				s.Unscoped = append(s.Unscoped, p)
			} else {
				movieLike = append(movieLike, p)
			}
		}
	}

	switch {
	case s.SeasonDir != "":
		s.Kind = ScopeSeason
	case len(movieLike) == 1:
		s.Kind = ScopeMovie
	case len(movieLike) >= 2:
		s.Kind = ScopeAmbiguous
	default:
		s.Kind = ScopeEmpty
	}

	s.Entities, s.Orphans = Bind(primaries, sidecars)
	return s
}

func (g *Grouper) hasEpisodeMarker(stem string) bool {
	_, ok := naming.FindEpisode(g.vocab.Tokenize(stem).Tokens)
	return ok
}

// IsExcludedPath reports whether any segment of path is exactly
// BONUS_FEATURES.
func IsExcludedPath(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ExcludedDirName {
			return true
		}
	}
	return false
}

// IsSeasonDirName reports whether a directory name starts like "Season 01".
// Trailing decoration such as "Season 1 (2019)" is allowed.
func IsSeasonDirName(name string) bool {
	return seasonDirRegex.MatchString(name)
}

// seasonOf finds the deepest season directory at or above dir and returns
// it with its parent's name.
func seasonOf(dir string) (string, string) {
	for d := filepath.Clean(dir); ; {
		parent := filepath.Dir(d)
		if IsSeasonDirName(filepath.Base(d)) {
			show := filepath.Base(parent)
			if show == string(filepath.Separator) || show == "." {
				show = ""
			}
			return d, show
		}
		if parent == d {
			return "", ""
		}
		d = parent
	}
}
