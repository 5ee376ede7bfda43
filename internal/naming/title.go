package naming

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title is a reconstructed human title.
type Title struct {
	Text string
	// Sequel is the trailing Roman numeral, number or "Part N" style marker.
	// It stays part of Text.
	Sequel     string
	Provenance []string
}

var minorWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "but": true, "or": true,
	"nor": true, "for": true, "so": true, "yet": true, "at": true, "by": true,
	"in": true, "of": true, "on": true, "to": true, "up": true, "as": true,
	"vs": true, "from": true, "into": true, "with": true, "via": true, "de": true,
	"la": true, "le": true, "du": true,
}

var sequelWords = map[string]bool{
	"part": true, "episode": true, "chapter": true, "vol": true, "volume": true,
}

// BuildTitle reconstructs the title from the tokens before yearIdx, or from
// the leading run of non-junk tokens when yearIdx < 0 or the year sits after
// the release markers. Known junk is skipped;
// group signatures and leftover words after the title become provenance.
func BuildTitle(tokens []Token, yearIdx int) Title {
	var t Title

	end := tailStart(tokens)
	if yearIdx >= 0 && yearIdx < end {
		end = yearIdx
	}

	var words []Token
	for i, tok := range tokens {
		if i == yearIdx {
			continue
		}
		switch {
		case tok.Kind == TokenGroup:
			t.Provenance = append(t.Provenance, tok.Text)
		case tok.Kind == TokenJunk, tok.Kind == TokenEpisode:
		case i < end:
			words = append(words, tok)
		default:
			t.Provenance = append(t.Provenance, tok.Text)
		}
	}
	if len(words) == 0 {
		return t
	}

	t.Text = joinTitle(words, hyphenJoins(tokens))
	t.Sequel = sequelMarker(words)
	return t
}

// hyphenJoins reports whether a bare "-" separates words inside a title
// (X-Men) rather than acting as the stem's word separator.
func hyphenJoins(tokens []Token) bool {
	hyphen, other := 0, 0
	for _, t := range tokens {
		switch {
		case t.Sep == "-":
			hyphen++
		case t.Sep != "":
			other++
		}
	}
	return hyphen > 0 && other >= hyphen
}

func isSubtitleDash(sep string) bool {
	return len(sep) > 1 && strings.Contains(sep, "-")
}

func joinTitle(words []Token, hyphenJoin bool) string {
	shouting := isShouting(words)

	var sb strings.Builder
	afterDash := false
	seenWord := false
	for i := 0; i < len(words); i++ {
		w := words[i]
		if i > 0 {
			switch {
			case isSubtitleDash(w.Sep):
				sb.WriteString(" - ")
				afterDash = true
			case w.Sep == "-" && hyphenJoin:
				sb.WriteString("-")
			default:
				sb.WriteString(" ")
			}
		}

		if run := letterRun(words[i:]); run > 1 {
			for j := 0; j < run; j++ {
				sb.WriteString(strings.ToUpper(words[i+j].Text))
				sb.WriteString(".")
			}
			i += run - 1
			afterDash = false
			seenWord = true
			continue
		}

		first := !seenWord || afterDash
		last := i == len(words)-1
		sb.WriteString(caseWord(w, first, last, shouting))
		afterDash = false
		if w.IsWordish() {
			seenWord = true
		}
	}
	return sb.String()
}

// letterRun counts single letters joined by "." at the head of words (E.T., U.S.).
func letterRun(words []Token) int {
	n := 0
	for i, w := range words {
		if utf8.RuneCountInString(w.Text) != 1 || !unicode.IsLetter([]rune(w.Text)[0]) {
			break
		}
		if i > 0 && w.Sep != "." {
			break
		}
		n++
	}
	return n
}

func isShouting(words []Token) bool {
	seen := 0
	for _, w := range words {
		if w.Kind != TokenWord || letterCount(w.Text) < 2 {
			continue
		}
		if strings.ToUpper(w.Text) != w.Text {
			return false
		}
		seen++
	}
	return seen > 0
}

func caseWord(w Token, first, last, shouting bool) string {
	switch w.Kind {
	case TokenNumeric, TokenNumeric4:
		return w.Text
	case TokenRoman:
		return strings.ToUpper(w.Text)
	}

	if !shouting && (isAcronym(w.Text) || isCamel(w.Text)) {
		return w.Text
	}
	lower := strings.ToLower(w.Text)
	if minorWords[lower] && !first && !last {
		return lower
	}
	if r := []rune(lower); len(r) == 0 || !unicode.IsLetter(r[0]) {
		return lower
	}
	return cases.Title(language.English).String(lower)
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func isAcronym(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 2 || n > 5 {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func isCamel(s string) bool {
	hasLower := false
	for i, r := range []rune(s) {
		if unicode.IsLower(r) {
			hasLower = true
		}
		if i > 0 && unicode.IsUpper(r) && hasLower {
			return true
		}
	}
	return false
}

func sequelMarker(words []Token) string {
	n := len(words)
	if n < 2 {
		return ""
	}
	lastTok := words[n-1]
	prev := strings.ToLower(words[n-2].Text)

	switch lastTok.Kind {
	case TokenRoman:
		if sequelWords[prev] {
			return caseWord(words[n-2], true, false, false) + " " + strings.ToUpper(lastTok.Text)
		}
		return strings.ToUpper(lastTok.Text)
	case TokenNumeric:
		v, err := strconv.Atoi(lastTok.Text)
		if err != nil || v >= 100 {
			return ""
		}
		if sequelWords[prev] {
			return caseWord(words[n-2], true, false, false) + " " + lastTok.Text
		}
		return lastTok.Text
	}
	return ""
}
