package naming

import (
	"slices"
	"strconv"
)

// MinYear is the earliest accepted release year.
const MinYear = 1888

// YearResult is the outcome of year extraction over a token slice.
type YearResult struct {
	Year  int // 0 when absent
	Index int // token index of the chosen year, -1 when absent
	// Ambiguous is set when a year-shaped token had to be treated as title
	// text and no year was chosen, or when several tokens after the title
	// qualified as the year.
	Ambiguous bool
}

// HasYear reports whether a year was chosen.
func (r YearResult) HasYear() bool {
	return r.Index >= 0
}

// ExtractYear picks the release year among tokens. Candidates are 4-digit
// tokens in [MinYear, currentYear] anywhere in the stem, release markers
// included. The rightmost candidate wins. The first token is only eligible
// when the stem has no word tokens, so "2012.2009" keeps 2012 as the title.
func ExtractYear(tokens []Token, currentYear int) YearResult {
	res := YearResult{Index: -1}

	hasWords := false
	for _, t := range tokens {
		if t.IsWordish() {
			hasWords = true
			break
		}
	}

	var candidates []int
	demoted := false
	for i, t := range tokens {
		if t.Kind != TokenNumeric4 {
			continue
		}
		value, _ := strconv.Atoi(t.Text)
		inRange := value >= MinYear && value <= currentYear
		eligible := inRange && (i > 0 || !hasWords)
		if eligible {
			candidates = append(candidates, i)
			continue
		}
		if yearShaped(value) {
			demoted = true
		}
	}

	if len(candidates) == 0 {
		res.Ambiguous = demoted
		return res
	}

	best := candidates[len(candidates)-1]
	res.Index = best
	res.Year, _ = strconv.Atoi(tokens[best].Text)

	afterWord := 0
	seenWord := false
	for i, t := range tokens {
		if t.IsWordish() {
			seenWord = true
		}
		if seenWord && slices.Contains(candidates, i) {
			afterWord++
		}
	}
	res.Ambiguous = afterWord > 1
	return res
}

// tailStart returns the index of the first junk, group or episode token that
// follows at least one title token, or len(tokens).
func tailStart(tokens []Token) int {
	seenTitle := false
	for i, t := range tokens {
		switch t.Kind {
		case TokenJunk, TokenEpisode, TokenGroup:
			if seenTitle {
				return i
			}
		default:
			seenTitle = true
		}
	}
	return len(tokens)
}

func yearShaped(v int) bool {
	return v >= 1900 && v <= 2099
}
