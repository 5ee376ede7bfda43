// Package collision assigns " - dupN" suffixes to files that would otherwise
// share a target name.
//
// The order is a pure function of the candidate set: quality color
// descending, resolution tier descending, original path (with any existing
// dup suffix removed) ascending, existing dup index, then the raw path.
// Re-running on the same set, in any enumeration order, gives the same
// assignment.
package collision

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Nomadcxx/jellytidy/internal/quality"
)

var dupSuffixRegex = regexp.MustCompile(`(?i)\s+-\s+dup(\d+)$`)

// Candidate is one file competing for a target stem. Ext is the extension
// of its target name.
type Candidate struct {
	ID    int
	Path  string
	Ext   string
	Color quality.Color
	Tier  quality.Tier
}

// Assignment is the name given to one candidate. Dup is 0 for the unsuffixed
// name.
type Assignment struct {
	Candidate Candidate
	Name      string
	Dup       int
}

// StripDupSuffix removes a trailing " - dupN" from a stem and returns N
// (0 when there is none).
func StripDupSuffix(stem string) (string, int) {
	m := dupSuffixRegex.FindStringSubmatchIndex(stem)
	if m == nil {
		return stem, 0
	}
	n, err := strconv.Atoi(stem[m[2]:m[3]])
	if err != nil {
		return stem, 0
	}
	return stem[:m[0]], n
}

// DupName renders stem + " - dupN" + ext, or stem + ext for n == 0.
func DupName(stem string, n int, ext string) string {
	if n == 0 {
		return stem + ext
	}
	return fmt.Sprintf("%s - dup%d%s", stem, n, ext)
}

// canonical returns the path with any dup suffix removed from the stem,
// and that suffix's index.
func canonical(path string) (string, int) {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem, n := StripDupSuffix(strings.TrimSuffix(base, ext))
	return dir + stem + ext, n
}

// Less reports whether a ranks before b.
func Less(a, b Candidate) bool {
	if a.Color != b.Color {
		return a.Color > b.Color
	}
	if a.Tier != b.Tier {
		return a.Tier > b.Tier
	}
	ca, na := canonical(a.Path)
	cb, nb := canonical(b.Path)
	if ca != cb {
		return ca < cb
	}
	if na != nb {
		return na < nb
	}
	return a.Path < b.Path
}

// Sort orders candidates in place.
func Sort(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool { return Less(cands[i], cands[j]) })
}

// Reserved is a set of names already taken in a target directory, compared
// case-insensitively.
type Reserved map[string]bool

// Add reserves a name.
func (r Reserved) Add(name string) {
	r[strings.ToLower(name)] = true
}

// Has reports whether name is taken.
func (r Reserved) Has(name string) bool {
	return r[strings.ToLower(name)]
}

// Resolve orders the candidates competing for stem and names them. The first
// gets the plain name, the rest " - dup1", " - dup2", ..., skipping names in
// reserved. Candidates share the stem even when their extensions differ,
// since sidecar names derive from it. Assigned names are added to reserved.
// The input slice is not modified.
func Resolve(stem string, cands []Candidate, reserved Reserved) []Assignment {
	ordered := append([]Candidate(nil), cands...)
	Sort(ordered)

	if reserved == nil {
		reserved = Reserved{}
	}

	out := make([]Assignment, 0, len(ordered))
	n := 0
	for _, c := range ordered {
		name := DupName(stem, n, c.Ext)
		for reserved.Has(name) {
			n++
			name = DupName(stem, n, c.Ext)
		}
		reserved.Add(name)
		out = append(out, Assignment{Candidate: c, Name: name, Dup: n})
		n++
	}
	return out
}
