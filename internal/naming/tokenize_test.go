package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(ts TokenStream) []TokenKind {
	out := make([]TokenKind, len(ts.Tokens))
	for i, t := range ts.Tokens {
		out[i] = t.Kind
	}
	return out
}

func texts(ts TokenStream) []string {
	out := make([]string, len(ts.Tokens))
	for i, t := range ts.Tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenize_Kinds(t *testing.T) {
	ts := Tokenize("Rocky.II.1979.1080p.BluRay.x265-RARBG")

	assert.Equal(t, []string{"Rocky", "II", "1979", "1080p", "BluRay", "x265", "RARBG"}, texts(ts))
	assert.Equal(t, []TokenKind{
		TokenWord, TokenRoman, TokenNumeric4, TokenJunk, TokenJunk, TokenJunk, TokenGroup,
	}, kinds(ts))
}

func TestTokenize_CollapsesSeparatorRuns(t *testing.T) {
	ts := Tokenize("The__Movie...Name -- 2010")
	assert.Equal(t, []string{"The", "Movie", "Name", "2010"}, texts(ts))
	assert.Equal(t, "__", ts.Tokens[1].Sep)
	assert.Equal(t, " -- ", ts.Tokens[3].Sep)
}

func TestTokenize_FusesCompoundMarkers(t *testing.T) {
	ts := Tokenize("Movie.2010.WEB-DL.DDP5.1.H.264")
	assert.Equal(t, []string{"Movie", "2010", "WEBDL", "DDP51ch", "H264"}, texts(ts))
	for _, tok := range ts.Tokens[2:] {
		assert.Equal(t, TokenJunk, tok.Kind, tok.Text)
	}
}

func TestTokenize_BracketGroups(t *testing.T) {
	ts := Tokenize("Movie (2010) [1080p x265] [Some Uploader]")

	assert.Equal(t, []string{"Movie", "2010", "1080p", "x265"}, texts(ts))
	assert.True(t, ts.Tokens[1].Bracketed)
	assert.Equal(t, []string{"Some Uploader"}, ts.Provenance)
}

func TestTokenize_WeakJunkNeedsContext(t *testing.T) {
	tests := []struct {
		stem string
		word string
		want TokenKind
	}{
		{"Mad.Max.2015", "Max", TokenWord},
		{"Movie.2015.MAX.WEB-DL", "MAX", TokenJunk},
		{"The.Thin.Red.Line.1998", "Line", TokenWord},
		{"Movie.2010.Complete.1080p", "Complete", TokenJunk},
		{"Movie.2010.HD", "HD", TokenJunk},
		{"The.Complete.Works", "Complete", TokenWord},
		{"Movie [HD]", "HD", TokenJunk},
	}

	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			ts := Tokenize(tt.stem)
			var found bool
			for _, tok := range ts.Tokens {
				if tok.Text == tt.word {
					found = true
					assert.Equal(t, tt.want, tok.Kind)
				}
			}
			require.True(t, found, "token %q not found in %v", tt.word, texts(ts))
		})
	}
}

func TestTokenize_EpisodeMarkers(t *testing.T) {
	for _, stem := range []string{"Show.S01E02", "Show.s1e2", "Show.1x02", "Show.S01E02E03"} {
		ts := Tokenize(stem)
		require.Len(t, ts.Tokens, 2, stem)
		assert.Equal(t, TokenEpisode, ts.Tokens[1].Kind, stem)
	}
}

func TestTokenize_ExtraVocabulary(t *testing.T) {
	v := DefaultVocabulary()
	v.AddJunk("hevcbd")
	v.AddGroups("mygroup")

	ts := v.Tokenize("Movie.2010.HEVCBD-MyGroup")
	assert.Equal(t, []TokenKind{TokenWord, TokenNumeric4, TokenJunk, TokenGroup}, kinds(ts))
}
