package duplicates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/jellytidy/internal/naming"
	"github.com/Nomadcxx/jellytidy/internal/quality"
)

func candidate(id int, name string, size int64) Candidate {
	stem, _ := naming.SplitExt(name)
	id0 := naming.Parse(stem)
	return Candidate{
		ID:   id,
		Path: "/lib/" + name,
		Name: name,
		Size: size,
		Key:  KeyFor("/lib", id0),
		Info: quality.ClassifyName(stem),
	}
}

func TestNormalizedName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Movie.2001.mkv", "movie.2001.mkv"},
		{"Movie.2001 (1).mkv", "movie.2001.mkv"},
		{"Movie.2001 (12).MKV", "movie.2001.mkv"},
		{"Movie.2001 copy.mkv", "movie.2001.mkv"},
		{"Movie.2001 copy 2.mkv", "movie.2001.mkv"},
		{"Movie.2001_duplicate.mkv", "movie.2001.mkv"},
		{"Movie (2001) - dup3.mkv", "movie (2001).mkv"},
		{"Movie (2001) - dup1 (1).mkv", "movie (2001).mkv"},
		{"Movie (2001).mkv", "movie (2001).mkv"},
		{"Movie (2001) (2).mkv", "movie (2001).mkv"},
		{"(1).mkv", "(1).mkv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizedName(tt.in), tt.in)
	}
}

func TestExactDuplicateBySize(t *testing.T) {
	same := Detect([]Candidate{
		candidate(1, "Movie.2001.1080p.x264.mkv", 4),
		candidate(2, "Movie.2001.1080p.x264 (1).mkv", 4),
	})
	require.Len(t, same, 1)
	require.Len(t, same[0].Exact, 1)
	assert.Len(t, same[0].Deleted(), 1)
	assert.Len(t, same[0].Kept(), 1)

	// one byte apart: distinct variants, both kept
	diff := Detect([]Candidate{
		candidate(1, "Movie.2001.1080p.x264.mkv", 4),
		candidate(2, "Movie.2001.1080p.x264 (1).mkv", 5),
	})
	require.Len(t, diff, 1)
	assert.Empty(t, diff[0].Exact)
	assert.Empty(t, diff[0].Deleted())
	assert.Len(t, diff[0].Kept(), 2)
	assert.False(t, diff[0].Tagged)
}

func TestExactDuplicateKeepsFirstByCollisionOrder(t *testing.T) {
	groups := Detect([]Candidate{
		candidate(1, "Movie.2001.mkv", 9),
		candidate(2, "Movie.2001 copy.mkv", 9),
		candidate(3, "Movie.2001 (2).mkv", 9),
	})
	require.Len(t, groups, 1)
	g := groups[0]
	require.Len(t, g.Exact, 1)
	require.Len(t, g.Exact[0], 3)

	kept := g.Kept()
	require.Len(t, kept, 1)
	assert.Equal(t, g.Members[0].ID, kept[0].ID)
	for _, c := range g.Deleted() {
		assert.True(t, g.IsDeleted(c.ID))
	}
	assert.False(t, g.IsDeleted(kept[0].ID))
}

func TestAlternateVersionsAreTagged(t *testing.T) {
	groups := Detect([]Candidate{
		candidate(1, "Heat.1995.1080p.BluRay.x264.mkv", 10),
		candidate(2, "Heat.1995.2160p.WEB-DL.HEVC.mkv", 20),
		candidate(3, "Heat.1995.EXTENDED.1080p.BluRay.x264.mkv", 30),
	})
	require.Len(t, groups, 1)
	g := groups[0]
	assert.True(t, g.Tagged)
	assert.Empty(t, g.Deleted())

	// UHD ranks first
	assert.Equal(t, 2, g.Members[0].ID)
}

func TestDifferentKeysDoNotGroup(t *testing.T) {
	groups := Detect([]Candidate{
		candidate(1, "Heat.1995.mkv", 1),
		candidate(2, "Heat.1986.mkv", 1),
		candidate(3, "Show.S01E01.mkv", 1),
		candidate(4, "Show.S01E02.mkv", 1),
	})
	assert.Len(t, groups, 4)
	for _, g := range groups {
		assert.False(t, g.HasCopies())
	}
	for i := 1; i < len(groups); i++ {
		assert.True(t, groups[i-1].Key.less(groups[i].Key))
	}
}

func TestDomainsAreIndependent(t *testing.T) {
	a := candidate(1, "Heat.1995.mkv", 1)
	b := candidate(2, "Heat.1995.mkv", 1)
	b.Path = "/other/Heat.1995.mkv"
	b.Key.Domain = "/other"

	groups := Detect([]Candidate{a, b})
	assert.Len(t, groups, 2)
}

func TestKeyFoldsAccentsAndCase(t *testing.T) {
	a := KeyFor("/d", naming.Identity{Title: "Amélie", Year: 2001, Kind: naming.KindMovie})
	b := KeyFor("/d", naming.Identity{Title: "AMELIE", Year: 2001, Kind: naming.KindMovie})
	assert.Equal(t, a, b)
	assert.Equal(t, "amelie (2001)", a.String())
}
