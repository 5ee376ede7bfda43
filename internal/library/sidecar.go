package library

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// Entity is a primary video with the sidecars bound to it.
type Entity struct {
	Primary  RawItem
	Sidecars []Sidecar
}

// Sidecar is a file attached to a primary. Tail is its name after the
// primary's stem, e.g. ".eng.forced.srt".
type Sidecar struct {
	Item RawItem
	Tail string
}

// Segments that may follow a primary stem besides language codes.
var variantSegments = map[string]bool{
	"forced":     true,
	"sdh":        true,
	"cc":         true,
	"hi":         true,
	"default":    true,
	"full":       true,
	"sign":       true,
	"signs":      true,
	"songs":      true,
	"commentary": true,
	"foreign":    true,
}

// Bind attaches each sidecar to the primary with the longest stem it
// extends. Sidecars matching no primary are returned as orphans. Both inputs
// must be sorted by path; outputs keep that order.
func Bind(primaries, sidecars []RawItem) ([]Entity, []RawItem) {
	entities := make([]Entity, len(primaries))
	for i, p := range primaries {
		entities[i].Primary = p
	}

	// Longest stem first so "Movie.Extended" wins over "Movie".
	order := make([]int, len(primaries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(primaries[order[a]].Stem()) > len(primaries[order[b]].Stem())
	})

	var orphans []RawItem
	for _, sc := range sidecars {
		bound := false
		for _, idx := range order {
			if tail, ok := SidecarTail(primaries[idx].Stem(), sc.Name()); ok {
				entities[idx].Sidecars = append(entities[idx].Sidecars, Sidecar{Item: sc, Tail: tail})
				bound = true
				break
			}
		}
		if !bound {
			orphans = append(orphans, sc)
		}
	}
	return entities, orphans
}

// SidecarTail reports whether sidecarName belongs to a primary with the given
// stem and returns the remainder after the stem. The sidecar's stem must equal
// the primary stem plus zero or more dot-separated locale or variant segments.
// The stem must match exactly, case included.
func SidecarTail(primaryStem, sidecarName string) (string, bool) {
	if len(sidecarName) <= len(primaryStem) || !strings.HasPrefix(sidecarName, primaryStem) {
		return "", false
	}
	tail := sidecarName[len(primaryStem):]
	if !strings.HasPrefix(tail, ".") {
		return "", false
	}

	segs := strings.Split(tail[1:], ".")
	// last segment is the extension
	for _, seg := range segs[:len(segs)-1] {
		if !IsVariantSegment(seg) {
			return "", false
		}
	}
	return tail, true
}

// IsVariantSegment reports whether seg is a language tag (en, eng, pt-BR), a
// known variant word (forced, sdh) or a track number.
func IsVariantSegment(seg string) bool {
	if seg == "" {
		return false
	}
	lower := strings.ToLower(seg)
	if variantSegments[lower] {
		return true
	}
	if isDigits(seg) {
		return len(seg) <= 2
	}
	if strings.ContainsAny(seg, "-_") {
		_, err := language.Parse(strings.ReplaceAll(seg, "_", "-"))
		return err == nil
	}
	if len(seg) < 2 || len(seg) > 3 || !isLetters(seg) {
		return false
	}
	_, err := language.ParseBase(lower)
	return err == nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
