package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovieName(t *testing.T) {
	assert.Equal(t, "Heat (1995)", MovieName("Heat", 1995))
	assert.Equal(t, "Heat", MovieName("Heat", 0))
}

func TestEpisodeName(t *testing.T) {
	assert.Equal(t, "Show - S01E02 - Pilot", EpisodeName("Show", "S01E02", "Pilot"))
	assert.Equal(t, "Show - S01E02", EpisodeName("Show", "S01E02", ""))
	assert.Equal(t, "Season 03", SeasonFolder(3))
}

func TestLetterBucket(t *testing.T) {
	tests := map[string]string{
		"Heat":          "H",
		"élan":          "E",
		"300":           "#",
		"(500) Days":    "#",
		"":              "_",
		"the Godfather": "T",
	}
	for in, want := range tests {
		assert.Equal(t, want, LetterBucket(in), in)
	}
}

func TestCleanExtension(t *testing.T) {
	assert.Equal(t, ".mkv", CleanExtension(".MKV"))
	assert.Equal(t, ".mp4", CleanExtension("mp4"))
	assert.Equal(t, ".srt", CleanExtension("..srt"))
	assert.Equal(t, "", CleanExtension(""))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Star Wars Episode IV", SanitizeName("Star Wars: Episode IV"))
	assert.Equal(t, "What If.", SanitizeName("What If?.."))
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "amelie", NormalizeKey("Amélie"))
	assert.Equal(t, "spider man no way home", NormalizeKey("Spider-Man: No Way Home"))
	assert.Equal(t, NormalizeKey("THE MATRIX"), NormalizeKey("The Matrix"))
}

func TestSplitExt(t *testing.T) {
	stem, ext := SplitExt("Movie.2010.1080p.mkv")
	assert.Equal(t, "Movie.2010.1080p", stem)
	assert.Equal(t, ".mkv", ext)

	stem, ext = SplitExt(".DS_Store")
	assert.Equal(t, ".DS_Store", stem)
	assert.Equal(t, "", ext)
}
