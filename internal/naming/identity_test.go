package naming

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParser() *Parser {
	return NewParser(WithCurrentYear(2024))
}

func TestParse_Movies(t *testing.T) {
	tests := []struct {
		stem      string
		title     string
		year      int
		sequel    string
		ambiguous bool
	}{
		{"Rocky.II.1979.1080p.BluRay.x265", "Rocky II", 1979, "II", false},
		{"Blade.Runner.2049.1080p.WEBRip.x265", "Blade Runner 2049", 0, "", true},
		{"2012.2009.1080p.BluRay.x265", "2012", 2009, "", false},
		{"300.2006.720p.BluRay.x264", "300", 2006, "", false},
		{"1917.2019.2160p.UHD.BluRay", "1917", 2019, "", false},
		{"Blade.Runner.2049.2017.1080p.BluRay.x264", "Blade Runner 2049", 2017, "", false},
		{"2001.A.Space.Odyssey.1968.2160p.UHD.BluRay", "2001 A Space Odyssey", 1968, "", false},
		{"Wonder.Woman.1984.2020.1080p.WEB-DL", "Wonder Woman 1984", 2020, "", true},
		{"The.Dark.Knight.2008.1080p.BluRay.x264-GROUP", "The Dark Knight", 2008, "", false},
		{"The-Dark-Knight-2008-1080p", "The Dark Knight", 2008, "", false},
		{"X-Men.2000.1080p.BluRay.x264-GROUP", "X-Men", 2000, "", false},
		{"Spider-Man.No.Way.Home.2021.2160p.WEB-DL.DDP5.1.HEVC", "Spider-Man No Way Home", 2021, "", false},
		{"E.T.the.Extra-Terrestrial.1982.1080p.BluRay", "E.T. the Extra-Terrestrial", 1982, "", false},
		{"R.I.P.D.2.Rise.of.the.Damned.2022.1080p.BluRay.x264", "R.I.P.D. 2 Rise of the Damned", 2022, "", false},
		{"D.E.B.S.2004.1080p.WEB-DL.AAC2.0.H.264", "D.E.B.S.", 2004, "", false},
		{"THE.MATRIX.1999.720p", "The Matrix", 1999, "", false},
		{"The.FBI.Files.2010.DVDRip", "The FBI Files", 2010, "", false},
		{"Mad.Max.Fury.Road.2015.1080p.BluRay", "Mad Max Fury Road", 2015, "", false},
		{"The.Thin.Red.Line.1998.720p", "The Thin Red Line", 1998, "", false},
		{"Mission.Impossible.-.Fallout.2018.2160p", "Mission Impossible - Fallout", 2018, "", false},
		{"Back.to.the.Future.Part.II.1989.1080p", "Back to the Future Part II", 1989, "Part II", false},
		{"Amélie.2001.1080p.BluRay", "Amélie", 2001, "", false},
		{"DuckTales.the.Movie.1990.DVDRip", "DuckTales the Movie", 1990, "", false},
		{"Movie.Title.1080p.2010", "Movie Title", 2010, "", false},
		{"Movie Title [1080p] 2010", "Movie Title", 2010, "", false},
		{"The.Movie.x264.2015.BluRay", "The Movie", 2015, "", false},
		{"Heat.NORDiC.1995.1080p", "Heat", 1995, "", false},
	}

	p := testParser()
	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			id := p.Parse(tt.stem)
			assert.Equal(t, tt.title, id.Title)
			assert.Equal(t, tt.year, id.Year)
			assert.Equal(t, tt.sequel, id.Sequel)
			assert.Equal(t, tt.ambiguous, id.AmbiguousYear)
			assert.Equal(t, KindMovie, id.Kind)
		})
	}
}

func TestParse_YearNeverDoubleConsumed(t *testing.T) {
	p := testParser()
	for _, stem := range []string{"2012.2009.1080p", "300.2006", "1917.2019", "Blade.Runner.2049.2017"} {
		id := p.Parse(stem)
		require.True(t, id.HasYear(), stem)
		assert.NotContains(t, id.Title, strconv.Itoa(id.Year), stem)
	}
}

func TestParse_LoneYearIsUnparsed(t *testing.T) {
	id := testParser().Parse("1999")
	assert.False(t, id.Parsed())
	assert.Equal(t, 1999, id.Year)
}

func TestParse_OutOfRangeYearIsTitle(t *testing.T) {
	id := NewParser(WithCurrentYear(2010)).Parse("Movie.2015")
	assert.Equal(t, "Movie 2015", id.Title)
	assert.Zero(t, id.Year)
	assert.True(t, id.AmbiguousYear)
}

func TestParse_NoiseBecomesProvenance(t *testing.T) {
	tests := []struct {
		stem       string
		title      string
		year       int
		provenance string
	}{
		{"[YTS.MX] Movie Name (2010) [1080p] [BluRay]", "Movie Name", 2010, "YTS.MX"},
		{"www.TamilRockers.ws - Movie (2019) 720p HDRip", "Movie", 2019, "www.TamilRockers.ws"},
		{"lostmovies.net.Heat.1995.1080p", "Heat", 1995, "lostmovies.net"},
		{"Heat.1995.1080p.BluRay-lostmovies.net", "Heat", 1995, "lostmovies.net"},
		{"Heat.1995.1080p.BluRay.x264-SPARKS", "Heat", 1995, "SPARKS"},
		{"RARBG.Heat.1995.1080p", "Heat", 1995, "RARBG"},
	}

	p := testParser()
	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			id := p.Parse(tt.stem)
			assert.Equal(t, tt.title, id.Title)
			assert.Equal(t, tt.year, id.Year)
			assert.Contains(t, id.Provenance, tt.provenance)
		})
	}
}

func TestParse_JunkIsRouted(t *testing.T) {
	id := testParser().Parse("Heat.1995.1080p.BluRay.REMUX.AVC.DTS-HD.MA.5.1-FGT")

	var classes []JunkClass
	for _, tok := range id.Junk {
		classes = append(classes, tok.Class)
	}
	assert.Contains(t, classes, JunkResolution)
	assert.Contains(t, classes, JunkSource)
	assert.Contains(t, classes, JunkCodec)
	assert.Contains(t, classes, JunkAudio)
	assert.Equal(t, "Heat", id.Title)
}

func TestParse_Episodes(t *testing.T) {
	tests := []struct {
		stem    string
		season  int
		episode int
		code    string
		epTitle string
	}{
		{"Show.Name.S01E02.Pilot.720p.HDTV.x264", 1, 2, "S01E02", "Pilot"},
		{"show.name.1x05.the.one.with.the.thing", 1, 5, "S01E05", "The One with the Thing"},
		{"Show.S02E03E04.1080p.WEB-DL", 2, 3, "S02E03-E04", ""},
		{"Show.S02E03-E04.Double.Bill", 2, 3, "S02E03-E04", "Double Bill"},
		{"Show Name - S10E11 - Show Name Reunion", 10, 11, "S10E11", "Reunion"},
	}

	p := testParser()
	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			id := p.Parse(tt.stem)
			assert.Equal(t, KindEpisode, id.Kind)
			assert.Equal(t, tt.season, id.Season)
			assert.Equal(t, tt.episode, id.Episode)
			assert.Equal(t, tt.code, id.EpisodeCode)
			assert.Equal(t, tt.epTitle, id.EpisodeTitle)
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	p := testParser()
	stem := "The.Lord.of.the.Rings.The.Return.of.the.King.2003.EXTENDED.1080p.BluRay.x264"
	first := p.Parse(stem)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.Parse(stem))
	}
}
