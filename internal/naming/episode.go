package naming

import (
	"strconv"
	"strings"
)

// EpisodeMarker is a parsed SxxEyy or NxNN token.
type EpisodeMarker struct {
	Season     int
	Episode    int
	EpisodeEnd int // last episode of a multi-episode file, equal to Episode otherwise
	Index      int // token index of the marker
	Last       int // index of the last token belonging to the marker
}

// FindEpisode returns the first episode marker among tokens.
func FindEpisode(tokens []Token) (EpisodeMarker, bool) {
	for i, t := range tokens {
		if t.Kind != TokenEpisode {
			continue
		}
		m := EpisodeMarker{Index: i, Last: i}
		if sm := episodeTokenRegex.FindStringSubmatch(t.Text); sm != nil {
			m.Season, _ = strconv.Atoi(sm[1])
			m.Episode, _ = strconv.Atoi(sm[2])
			m.EpisodeEnd = m.Episode
			if sm[3] != "" {
				m.EpisodeEnd, _ = strconv.Atoi(sm[3])
			}
		} else if cm := crossEpisodeRegex.FindStringSubmatch(t.Text); cm != nil {
			m.Season, _ = strconv.Atoi(cm[1])
			m.Episode, _ = strconv.Atoi(cm[2])
			m.EpisodeEnd = m.Episode
		} else {
			continue
		}
		for j := i + 1; j < len(tokens) && tokens[j].Kind == TokenEpisode; j++ {
			if em := extraEpisodeRegex.FindStringSubmatch(tokens[j].Text); em != nil {
				m.EpisodeEnd, _ = strconv.Atoi(em[1])
				m.Last = j
			}
		}
		return m, true
	}
	return EpisodeMarker{}, false
}

// Code renders the marker as S01E02 (or S01E02-E03).
func (m EpisodeMarker) Code() string {
	code := "S" + pad2(m.Season) + "E" + pad2(m.Episode)
	if m.EpisodeEnd > m.Episode {
		code += "-E" + pad2(m.EpisodeEnd)
	}
	return code
}

func pad2(n int) string {
	s := strconv.Itoa(n)
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

// EpisodeTitle builds the episode title from the tokens following the
// marker, stopping at the release-marker tail. A leading repeat of the show
// name is dropped.
func EpisodeTitle(tokens []Token, m EpisodeMarker, show string) string {
	rest := tokens[m.Last+1:]
	end := len(rest)
	for i, t := range rest {
		if t.Kind == TokenJunk || t.Kind == TokenGroup || t.Kind == TokenEpisode {
			end = i
			break
		}
	}
	if end == 0 {
		return ""
	}
	rest = append([]Token(nil), rest[:end]...)
	rest[0].Sep = ""
	title := BuildTitle(rest, -1).Text
	if show != "" {
		if trimmed, ok := cutFold(title, show); ok && (trimmed == "" || strings.HasPrefix(trimmed, " ")) {
			title = strings.TrimLeft(trimmed, " -")
		}
	}
	return title
}

// cutFold removes prefix from s, ignoring case.
func cutFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
