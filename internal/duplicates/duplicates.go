// Package duplicates finds copies of the same title inside one resolution
// domain and splits them into exact duplicates and kept variants.
package duplicates

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Nomadcxx/jellytidy/internal/collision"
	"github.com/Nomadcxx/jellytidy/internal/naming"
	"github.com/Nomadcxx/jellytidy/internal/quality"
)

// Trailing disambiguators left by copy tools and earlier runs. Counters
// stop at three digits so a parenthesized year is never taken for one.
var disambiguatorRegex = regexp.MustCompile(`(?i)(\s+\(\d{1,3}\)|[\s._-]+copy(\s*\d+)?|[\s._-]+duplicate|\s+-\s+dup\d+)$`)

// Key identifies a title inside a domain. Domain is the directory the copies
// would land in; copies in different domains never interact.
type Key struct {
	Domain  string
	Title   string
	Year    int
	Kind    naming.MediaKind
	Season  int
	Episode int
}

// KeyFor builds the grouping key of an identity. The title is accent and
// case folded.
func KeyFor(domain string, id naming.Identity) Key {
	k := Key{
		Domain: domain,
		Title:  naming.NormalizeKey(id.Title),
		Year:   id.Year,
		Kind:   id.Kind,
	}
	if id.Kind == naming.KindEpisode {
		k.Season = id.Season
		k.Episode = id.Episode
	}
	return k
}

func (k Key) String() string {
	s := k.Title
	if k.Year > 0 {
		s = fmt.Sprintf("%s (%d)", s, k.Year)
	}
	if k.Kind == naming.KindEpisode {
		s += fmt.Sprintf(" S%02dE%02d", k.Season, k.Episode)
	}
	return s
}

func (k Key) less(o Key) bool {
	switch {
	case k.Domain != o.Domain:
		return k.Domain < o.Domain
	case k.Title != o.Title:
		return k.Title < o.Title
	case k.Year != o.Year:
		return k.Year < o.Year
	case k.Kind != o.Kind:
		return k.Kind < o.Kind
	case k.Season != o.Season:
		return k.Season < o.Season
	default:
		return k.Episode < o.Episode
	}
}

// Candidate is one primary video.
type Candidate struct {
	ID   int
	Path string
	Name string // base name with extension
	Size int64
	Key  Key
	Info quality.Info
}

func (c Candidate) rank() collision.Candidate {
	return collision.Candidate{ID: c.ID, Path: c.Path, Color: c.Info.Color, Tier: c.Info.Tier}
}

// Group is every copy of one title in one domain.
type Group struct {
	Key Key
	// Members in collision order.
	Members []Candidate
	// Exact holds sets of identical copies (same normalized name and size).
	// The first of each set is kept.
	Exact [][]Candidate
	// Tagged is true when the kept members carry more than one distinct
	// version tag and should be named apart.
	Tagged bool
}

// Deleted returns the redundant copies of every exact set.
func (g Group) Deleted() []Candidate {
	var out []Candidate
	for _, set := range g.Exact {
		out = append(out, set[1:]...)
	}
	return out
}

// Kept returns the members that survive, in collision order.
func (g Group) Kept() []Candidate {
	drop := make(map[int]bool)
	for _, c := range g.Deleted() {
		drop[c.ID] = true
	}
	out := make([]Candidate, 0, len(g.Members))
	for _, c := range g.Members {
		if !drop[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// HasCopies reports whether the group holds more than one file.
func (g Group) HasCopies() bool {
	return len(g.Members) > 1
}

// IsDeleted reports whether the candidate with id is a redundant copy.
func (g Group) IsDeleted(id int) bool {
	for _, c := range g.Deleted() {
		if c.ID == id {
			return true
		}
	}
	return false
}

// NormalizedName lowercases a file name and strips trailing " (1)", " copy",
// " duplicate" and " - dupN" disambiguators from its stem.
func NormalizedName(name string) string {
	stem, ext := naming.SplitExt(name)
	for {
		loc := disambiguatorRegex.FindStringIndex(stem)
		if loc == nil || loc[0] == 0 {
			break
		}
		stem = stem[:loc[0]]
	}
	return strings.ToLower(strings.TrimSpace(stem) + ext)
}

// Detect groups candidates by key. Every candidate appears in exactly one
// group; groups are sorted by key.
func Detect(cands []Candidate) []Group {
	byKey := make(map[Key][]Candidate)
	for _, c := range cands {
		byKey[c.Key] = append(byKey[c.Key], c)
	}

	keys := make([]Key, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, buildGroup(k, byKey[k]))
	}
	return groups
}

type exactKey struct {
	name string
	size int64
}

func buildGroup(key Key, members []Candidate) Group {
	sort.SliceStable(members, func(i, j int) bool {
		return collision.Less(members[i].rank(), members[j].rank())
	})
	g := Group{Key: key, Members: members}

	sets := make(map[exactKey][]Candidate)
	var order []exactKey
	for _, c := range members {
		ek := exactKey{name: NormalizedName(c.Name), size: c.Size}
		if _, ok := sets[ek]; !ok {
			order = append(order, ek)
		}
		sets[ek] = append(sets[ek], c)
	}
	for _, ek := range order {
		if len(sets[ek]) > 1 {
			g.Exact = append(g.Exact, sets[ek])
		}
	}

	tags := make(map[string]bool)
	for _, c := range g.Kept() {
		tags[c.Info.VersionTag()] = true
	}
	g.Tagged = len(tags) > 1
	return g
}
