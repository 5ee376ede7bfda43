package plans

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/jellytidy/internal/library"
	"github.com/Nomadcxx/jellytidy/internal/naming"
)

type file struct {
	path string
	size int64
}

func items(files ...file) []library.RawItem {
	out := make([]library.RawItem, len(files))
	for i, f := range files {
		out[i] = library.NewItem(f.path, f.size, false)
	}
	return out
}

func testBuilder(opts ...Option) *Builder {
	p := naming.NewParser(naming.WithCurrentYear(2024))
	return NewBuilder(append([]Option{WithParser(p)}, opts...)...)
}

func buildMap(t *testing.T, b *Builder, in []library.RawItem) map[string]Record {
	t.Helper()
	records, err := b.Build(in)
	require.NoError(t, err)
	out := make(map[string]Record, len(records))
	for _, r := range records {
		out[r.SourcePath] = r
	}
	require.Len(t, out, len(records), "one record per source path")
	return out
}

func TestBuildMovie(t *testing.T) {
	got := buildMap(t, testBuilder(), items(file{"/lib/Rocky/Rocky.II.1979.1080p.BluRay.x265.mkv", 10}))

	r := got["/lib/Rocky/Rocky.II.1979.1080p.BluRay.x265.mkv"]
	assert.Equal(t, "/lib/Rocky/Rocky II (1979).mkv", r.TargetPath)
	assert.Equal(t, ActionRename, r.Action)
	assert.Equal(t, ReasonNormalized, r.Reason)
	assert.Equal(t, "GREEN", r.QualityColor)
	assert.Equal(t, "movie", r.Kind)
	assert.Equal(t, "Rocky II", r.Title)
	assert.Equal(t, 1979, r.Year)
	assert.Empty(t, r.Flags)
}

func TestBuildAmbiguousYear(t *testing.T) {
	got := buildMap(t, testBuilder(), items(file{"/lib/BR/Blade.Runner.2049.1080p.WEBRip.x265.mkv", 10}))

	r := got["/lib/BR/Blade.Runner.2049.1080p.WEBRip.x265.mkv"]
	assert.Equal(t, "/lib/BR/Blade Runner 2049.mkv", r.TargetPath)
	assert.Equal(t, ReasonAmbiguousYear, r.Reason)
	assert.True(t, r.HasFlag(FlagAmbiguousYear))
	assert.Zero(t, r.Year)
}

func TestBuildNumericTitle(t *testing.T) {
	got := buildMap(t, testBuilder(), items(file{"/lib/2012/2012.2009.1080p.BluRay.x265.mkv", 10}))
	assert.Equal(t, "/lib/2012/2012 (2009).mkv", got["/lib/2012/2012.2009.1080p.BluRay.x265.mkv"].TargetPath)
}

func TestBuildCollisionBetweenVariants(t *testing.T) {
	got := buildMap(t, testBuilder(), items(
		file{"/lib/M/Movie.2001.1080p.x264.mkv", 4},
		file{"/lib/M/Movie.2001.1080p.x264 (1).mkv", 8},
	))

	first := got["/lib/M/Movie.2001.1080p.x264 (1).mkv"]
	second := got["/lib/M/Movie.2001.1080p.x264.mkv"]
	assert.Equal(t, "/lib/M/Movie (2001).mkv", first.TargetPath)
	assert.Equal(t, "/lib/M/Movie (2001) - dup1.mkv", second.TargetPath)
	assert.Equal(t, ReasonCollisionResolved, second.Reason)
	assert.True(t, second.HasFlag(FlagCollision))
	assert.False(t, first.HasFlag(FlagCollision))
}

func TestBuildExactDuplicate(t *testing.T) {
	got := buildMap(t, testBuilder(), items(
		file{"/lib/M/Movie.2001.1080p.x264.mkv", 4},
		file{"/lib/M/Movie.2001.1080p.x264 (1).mkv", 4},
		file{"/lib/M/Movie.2001.1080p.x264.en.srt", 1},
	))

	kept := got["/lib/M/Movie.2001.1080p.x264 (1).mkv"]
	deleted := got["/lib/M/Movie.2001.1080p.x264.mkv"]
	assert.Equal(t, "/lib/M/Movie (2001).mkv", kept.TargetPath)
	assert.Equal(t, ActionDelete, deleted.Action)
	assert.Equal(t, ReasonExactDuplicate, deleted.Reason)
	assert.Empty(t, deleted.TargetPath)

	sub := got["/lib/M/Movie.2001.1080p.x264.en.srt"]
	assert.Equal(t, ActionSkip, sub.Action)
	assert.Equal(t, ReasonDuplicateSidecar, sub.Reason)
	assert.Equal(t, sub.SourcePath, sub.TargetPath)
}

func TestBuildAlternateVersions(t *testing.T) {
	got := buildMap(t, testBuilder(), items(
		file{"/lib/Heat/Heat.1995.2160p.UHD.BluRay.x265.mkv", 40},
		file{"/lib/Heat/Heat.1995.1080p.WEB-DL.x264.mkv", 8},
	))

	uhd := got["/lib/Heat/Heat.1995.2160p.UHD.BluRay.x265.mkv"]
	hd := got["/lib/Heat/Heat.1995.1080p.WEB-DL.x264.mkv"]
	assert.Equal(t, "/lib/Heat/Heat (1995) - 2160p BluRay.mkv", uhd.TargetPath)
	assert.Equal(t, "/lib/Heat/Heat (1995) - 1080p WEB-DL.mkv", hd.TargetPath)
	assert.True(t, uhd.HasFlag(FlagAlternateVersion))
	assert.True(t, hd.HasFlag(FlagAlternateVersion))
}

func TestBuildExcludedScope(t *testing.T) {
	got := buildMap(t, testBuilder(), items(
		file{"/lib/Heat/BONUS_FEATURES/Heat.Trailer.1995.mkv", 2},
		file{"/lib/Heat/Heat.1995.720p.mkv", 10},
	))

	r := got["/lib/Heat/BONUS_FEATURES/Heat.Trailer.1995.mkv"]
	assert.Equal(t, ActionSkip, r.Action)
	assert.Equal(t, ReasonExcludedScope, r.Reason)
	assert.Equal(t, r.SourcePath, r.TargetPath)
	assert.Equal(t, "/lib/Heat/Heat (1995).mkv", got["/lib/Heat/Heat.1995.720p.mkv"].TargetPath)
}

func TestBuildSidecarsFollowPrimary(t *testing.T) {
	got := buildMap(t, testBuilder(), items(
		file{"/lib/Heat/Heat.1995.1080p.BluRay.x264.mkv", 10},
		file{"/lib/Heat/Heat.1995.1080p.BluRay.x264.en.srt", 1},
		file{"/lib/Heat/Heat.1995.1080p.BluRay.x264.en.forced.SRT", 1},
		file{"/lib/Heat/Heat.1995.1080p.BluRay.x264.nfo", 1},
		file{"/lib/Heat/random.srt", 1},
	))

	assert.Equal(t, "/lib/Heat/Heat (1995).mkv", got["/lib/Heat/Heat.1995.1080p.BluRay.x264.mkv"].TargetPath)

	en := got["/lib/Heat/Heat.1995.1080p.BluRay.x264.en.srt"]
	assert.Equal(t, "/lib/Heat/Heat (1995).en.srt", en.TargetPath)
	assert.Equal(t, ReasonSidecar, en.Reason)
	assert.Equal(t, "sidecar", en.Role)
	assert.Equal(t, "Heat", en.Title)

	assert.Equal(t, "/lib/Heat/Heat (1995).en.forced.srt", got["/lib/Heat/Heat.1995.1080p.BluRay.x264.en.forced.SRT"].TargetPath)
	assert.Equal(t, "/lib/Heat/Heat (1995).nfo", got["/lib/Heat/Heat.1995.1080p.BluRay.x264.nfo"].TargetPath)

	orphan := got["/lib/Heat/random.srt"]
	assert.Equal(t, ActionSkip, orphan.Action)
	assert.Equal(t, ReasonSidecarOrphan, orphan.Reason)
}

func TestBuildOSJunk(t *testing.T) {
	in := items(
		file{"/lib/Heat/Heat.1995.720p.mkv", 10},
		file{"/lib/Heat/.DS_Store", 1},
		file{"/lib/Heat/Thumbs.db", 1},
	)

	got := buildMap(t, testBuilder(), in)
	assert.Equal(t, ActionSkip, got["/lib/Heat/.DS_Store"].Action)
	assert.Equal(t, ReasonNotMedia, got["/lib/Heat/.DS_Store"].Reason)

	got = buildMap(t, testBuilder(WithOSJunkCleanup(true)), in)
	for _, p := range []string{"/lib/Heat/.DS_Store", "/lib/Heat/Thumbs.db"} {
		assert.Equal(t, ActionDelete, got[p].Action, p)
		assert.Equal(t, ReasonOSJunk, got[p].Reason, p)
		assert.Equal(t, "os-junk", got[p].Role, p)
	}
}

func TestBuildSeason(t *testing.T) {
	got := buildMap(t, testBuilder(), items(
		file{"/lib/Show Name/Season 1/Show.Name.S01E02.Pilot.720p.HDTV.x264.mkv", 10},
		file{"/lib/Show Name/Season 1/Show.Name.S01E02.Pilot.720p.HDTV.x264.en.srt", 1},
	))

	ep := got["/lib/Show Name/Season 1/Show.Name.S01E02.Pilot.720p.HDTV.x264.mkv"]
	assert.Equal(t, "/lib/Show Name/Season 1/Show Name - S01E02 - Pilot.mkv", ep.TargetPath)
	assert.Equal(t, "episode", ep.Kind)
	assert.Equal(t, "Show Name", ep.Title)
	assert.Equal(t, ActionRename, ep.Action)

	assert.Equal(t, "/lib/Show Name/Season 1/Show Name - S01E02 - Pilot.en.srt",
		got["/lib/Show Name/Season 1/Show.Name.S01E02.Pilot.720p.HDTV.x264.en.srt"].TargetPath)
}

func TestBuildDecoratedSeasonDir(t *testing.T) {
	got := buildMap(t, testBuilder(), items(
		file{"/tv/Show/Season 1 (2019)/Show.S01E01.720p.x265.mkv", 10},
	))

	ep := got["/tv/Show/Season 1 (2019)/Show.S01E01.720p.x265.mkv"]
	assert.Equal(t, ActionRename, ep.Action)
	assert.Equal(t, "/tv/Show/Season 1 (2019)/Show - S01E01.mkv", ep.TargetPath)
}

func TestBuildDestinationLayout(t *testing.T) {
	b := testBuilder(WithDestination("/media"))
	got := buildMap(t, b, items(
		file{"/lib/Heat/Heat.1995.720p.x265.mkv", 10},
		file{"/lib/Heat/Heat.1995.720p.x265.en.srt", 1},
		file{"/lib/Show Name/Season 1/Show.Name.S01E02.Pilot.720p.HDTV.x264.mkv", 10},
		file{"/lib/Dump/Alien.1979.mkv", 10},
		file{"/lib/Dump/Aliens.1986.mkv", 10},
	))

	movie := got["/lib/Heat/Heat.1995.720p.x265.mkv"]
	assert.Equal(t, "/media/movies/H/Heat (1995)/Heat (1995).mkv", movie.TargetPath)
	assert.Equal(t, ActionMove, movie.Action)
	assert.Equal(t, ReasonNormalized, movie.Reason)
	assert.Equal(t, int64(10), Summarize([]Record{movie}).BytesToMove)

	sub := got["/lib/Heat/Heat.1995.720p.x265.en.srt"]
	assert.Equal(t, "/media/movies/H/Heat (1995)/Heat (1995).en.srt", sub.TargetPath)
	assert.Equal(t, ActionMove, sub.Action)

	ep := got["/lib/Show Name/Season 1/Show.Name.S01E02.Pilot.720p.HDTV.x264.mkv"]
	assert.Equal(t, "/media/tv/Show Name/Season 01/Show Name - S01E02 - Pilot.mkv", ep.TargetPath)

	// ambiguous directories are normalized in place
	alien := got["/lib/Dump/Alien.1979.mkv"]
	assert.Equal(t, "/lib/Dump/Alien (1979).mkv", alien.TargetPath)
	assert.Equal(t, ActionRename, alien.Action)
}

func TestBuildAmbiguousDirectory(t *testing.T) {
	got := buildMap(t, testBuilder(), items(
		file{"/lib/Dump/Alien.1979.1080p.BluRay.x265.mkv", 10},
		file{"/lib/Dump/Heat.1995.1080p.BluRay.x265.mkv", 10},
	))

	for _, r := range got {
		assert.Equal(t, ActionRename, r.Action, r.SourcePath)
		assert.Equal(t, ReasonAmbiguousDirectory, r.Reason, r.SourcePath)
		assert.True(t, r.HasFlag(FlagAmbiguousDirectory), r.SourcePath)
		assert.Equal(t, "unknown", r.Kind, r.SourcePath)
	}
	assert.Equal(t, "/lib/Dump/Heat (1995).mkv", got["/lib/Dump/Heat.1995.1080p.BluRay.x265.mkv"].TargetPath)
}

func TestBuildUnscopedEpisode(t *testing.T) {
	got := buildMap(t, testBuilder(), items(
		file{"/lib/Loose/Show.Name.S01E02.720p.mkv", 10},
		file{"/lib/Loose/Heat.1995.720p.mkv", 10},
	))

	ep := got["/lib/Loose/Show.Name.S01E02.720p.mkv"]
	assert.Equal(t, ActionSkip, ep.Action)
	assert.Equal(t, ReasonUnscopedEpisode, ep.Reason)
	assert.Equal(t, "/lib/Loose/Heat (1995).mkv", got["/lib/Loose/Heat.1995.720p.mkv"].TargetPath)
}

func TestBuildUnparsed(t *testing.T) {
	got := buildMap(t, testBuilder(), items(file{"/lib/X/1999.mkv", 10}))
	r := got["/lib/X/1999.mkv"]
	assert.Equal(t, ActionSkip, r.Action)
	assert.Equal(t, ReasonUnparsed, r.Reason)
}

func TestBuildRejectsInvalidBatch(t *testing.T) {
	bad := []library.RawItem{{Path: "relative/a.mkv", Dir: "relative", Ext: ".mkv"}}
	_, err := testBuilder().Build(bad)
	require.Error(t, err)

	var invalid *library.InvalidItemError
	assert.ErrorAs(t, err, &invalid)
}

func mixedLibrary() []library.RawItem {
	return items(
		file{"/lib/Heat/Heat.1995.1080p.BluRay.x264.mkv", 10},
		file{"/lib/Heat/Heat.1995.1080p.BluRay.x264.en.srt", 1},
		file{"/lib/Heat/Heat.1995.1080p.BluRay.x264.en.forced.SRT", 1},
		file{"/lib/M/Movie.2001.1080p.x264.mkv", 4},
		file{"/lib/M/Movie.2001.1080p.x264 (1).mkv", 8},
		file{"/lib/M/Movie.2001.1080p.x264 (2).mkv", 8},
		file{"/lib/Rocky/Rocky.II.1979.1080p.BluRay.x265.mkv", 10},
		file{"/lib/Show Name/Season 1/Show.Name.S01E02.Pilot.720p.HDTV.x264.mkv", 10},
		file{"/lib/Show Name/Season 1/Show.Name.S01E03.720p.HDTV.x264.mkv", 10},
	)
}

func TestBuildIsIdempotent(t *testing.T) {
	b := testBuilder()
	first, err := b.Build(mixedLibrary())
	require.NoError(t, err)

	var after []library.RawItem
	for _, r := range first {
		if r.Action == ActionDelete {
			continue
		}
		after = append(after, library.NewItem(r.TargetPath, r.Size, false))
	}

	second, err := b.Build(after)
	require.NoError(t, err)
	require.Len(t, second, len(after))
	for _, r := range second {
		assert.Equal(t, ActionSkip, r.Action, r.SourcePath)
		assert.Equal(t, r.SourcePath, r.TargetPath)
	}
}

func TestBuildDeterministicUnderPermutation(t *testing.T) {
	b := testBuilder(WithWorkers(4))
	base := mixedLibrary()
	reference, err := b.Build(base)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 20; i++ {
		perm := append([]library.RawItem(nil), base...)
		rng.Shuffle(len(perm), func(a, c int) { perm[a], perm[c] = perm[c], perm[a] })
		got, err := b.Build(perm)
		require.NoError(t, err)
		assert.Equal(t, reference, got)
	}
}

// sidecarClash binds three subtitles to one target name, next to a subtitle
// that already carries the normalized name.
func sidecarClash() []library.RawItem {
	return items(
		file{"/lib/M/Movie.2010.1080p.mkv", 10},
		file{"/lib/M/Movie.2010.1080p.srt", 1},
		file{"/lib/M/Movie.2010.1080p.SRT", 1},
		file{"/lib/M/Movie.2010.1080p.eng.srt", 1},
		file{"/lib/M/Movie (2010).eng.srt", 1},
	)
}

func TestBuildTargetsAreUnique(t *testing.T) {
	for name, in := range map[string][]library.RawItem{
		"mixed":          mixedLibrary(),
		"sidecar clash":  sidecarClash(),
		"sidecar clash+": append(mixedLibrary(), sidecarClash()...),
	} {
		t.Run(name, func(t *testing.T) {
			records, err := testBuilder().Build(in)
			require.NoError(t, err)

			seen := make(map[string]string)
			for _, r := range records {
				if r.TargetPath == "" {
					continue
				}
				key := strings.ToLower(r.TargetPath)
				prev, dup := seen[key]
				assert.False(t, dup, "%s and %s share target %s", prev, r.SourcePath, r.TargetPath)
				seen[key] = r.SourcePath
			}
		})
	}
}

func TestBuildSidecarTargetTaken(t *testing.T) {
	got := buildMap(t, testBuilder(), sidecarClash())

	assert.Equal(t, "/lib/M/Movie (2010).mkv", got["/lib/M/Movie.2010.1080p.mkv"].TargetPath)

	upper := got["/lib/M/Movie.2010.1080p.SRT"]
	assert.Equal(t, ActionRename, upper.Action)
	assert.Equal(t, "/lib/M/Movie (2010).srt", upper.TargetPath)

	for _, path := range []string{"/lib/M/Movie.2010.1080p.srt", "/lib/M/Movie.2010.1080p.eng.srt"} {
		r := got[path]
		assert.Equal(t, ActionSkip, r.Action, path)
		assert.Equal(t, ReasonDuplicateSidecar, r.Reason, path)
		assert.Equal(t, path, r.TargetPath, path)
	}

	kept := got["/lib/M/Movie (2010).eng.srt"]
	assert.Equal(t, ActionSkip, kept.Action)
	assert.Equal(t, ReasonSidecarOrphan, kept.Reason)
}

func TestValidateDestination(t *testing.T) {
	roots := []string{"/lib", "/other"}
	assert.NoError(t, ValidateDestination(roots, ""))
	assert.NoError(t, ValidateDestination(roots, "/media"))
	assert.NoError(t, ValidateDestination(roots, "/library"))
	assert.ErrorIs(t, ValidateDestination(roots, "/lib"), ErrDestinationInsideSource)
	assert.ErrorIs(t, ValidateDestination(roots, "/lib/sorted"), ErrDestinationInsideSource)
	assert.ErrorIs(t, ValidateDestination(roots, "media"), ErrDestinationNotAbsolute)
}
