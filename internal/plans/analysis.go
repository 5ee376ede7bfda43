package plans

import (
	"sort"

	"github.com/Nomadcxx/jellytidy/internal/duplicates"
	"github.com/Nomadcxx/jellytidy/internal/quality"
)

// Analysis is a built plan plus the per-primary detail behind it.
type Analysis struct {
	Records []Record
	// Primaries holds every primary video, sorted by path.
	Primaries []Primary
	// Duplicates holds the groups with more than one copy, sorted by key.
	Duplicates []duplicates.Group
}

// Primary is one primary video as the planner saw it.
type Primary struct {
	Path   string
	Size   int64
	Kind   string
	Title  string
	Year   int
	Info   quality.Info
	Action Action
	Reason Reason
	Target string
}

func primaryOf(e entry, r Record) Primary {
	return Primary{
		Path:   e.item.Path,
		Size:   e.item.Size,
		Kind:   r.Kind,
		Title:  r.Title,
		Year:   r.Year,
		Info:   e.info,
		Action: r.Action,
		Reason: r.Reason,
		Target: r.TargetPath,
	}
}

// ByQuality returns the primaries sorted worst first: color, then tier, then
// source, then path.
func (a *Analysis) ByQuality() []Primary {
	out := append([]Primary(nil), a.Primaries...)
	sort.SliceStable(out, func(i, j int) bool {
		if c := quality.Compare(out[i].Info, out[j].Info); c != 0 {
			return c < 0
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// IsEpisode reports whether the primary was planned as a TV episode.
func (p Primary) IsEpisode() bool {
	return p.Kind == "episode"
}

// ColorTotal is the count and size of primaries of one color.
type ColorTotal struct {
	Color quality.Color
	Count int
	Bytes int64
}

// ColorTotals counts primaries per color, RED first. Every color is present.
func (a *Analysis) ColorTotals() []ColorTotal {
	totals := []ColorTotal{
		{Color: quality.ColorRed},
		{Color: quality.ColorYellow},
		{Color: quality.ColorGreen},
		{Color: quality.ColorBlue},
	}
	for _, p := range a.Primaries {
		t := &totals[p.Info.Color]
		t.Count++
		t.Bytes += p.Size
	}
	return totals
}

// ReclaimableBytes sums the size of every exact duplicate marked for deletion.
func (a *Analysis) ReclaimableBytes() int64 {
	var n int64
	for _, g := range a.Duplicates {
		for _, c := range g.Deleted() {
			n += c.Size
		}
	}
	return n
}
