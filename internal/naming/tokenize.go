package naming

import (
	"regexp"
	"strings"
	"unicode"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// Multi-part release terms are fused before splitting so that separators
// inside them (WEB-DL, DTS-HD.MA, H.264, DD5.1) do not produce stray tokens.
var compoundTerms = []rewrite{
	{regexp.MustCompile(`(?i)\bweb[ .\-]?dl\b`), "WEBDL"},
	{regexp.MustCompile(`(?i)\bweb[ .\-]?rip\b`), "WEBRip"},
	{regexp.MustCompile(`(?i)\bblu[ .\-]?ray\b`), "BluRay"},
	{regexp.MustCompile(`(?i)\bdts[ .\-]?hd[ .\-]?ma\b`), "DTSHDMA"},
	{regexp.MustCompile(`(?i)\bdts[ .\-](hd|x|es)\b`), "DTS$1"},
	{regexp.MustCompile(`(?i)\bhdr10\+`), "HDR10Plus"},
	{regexp.MustCompile(`(?i)\bdd\+`), "DDP"},
	{regexp.MustCompile(`(?i)\be-?ac-?3\b`), "EAC3"},
	{regexp.MustCompile(`(?i)\bac-3\b`), "AC3"},
	{regexp.MustCompile(`(?i)\bdolby[ .\-]?vision\b`), "DolbyVision"},
	{regexp.MustCompile(`(?i)\bdirector'?s[ .\-]?cut\b`), "DirectorsCut"},
	{regexp.MustCompile(`(?i)\bdual[ .\-]audio\b`), "DualAudio"},
	{regexp.MustCompile(`(?i)\b([hx])[ .](26[4-6])\b`), "${1}${2}"},
	{regexp.MustCompile(`(?i)\bvc-1\b`), "VC1"},
	{regexp.MustCompile(`(?i)\bmpeg-([24])\b`), "MPEG$1"},
	{regexp.MustCompile(`(?i)(^|[\s._\-])((?:ddp?|e?ac3|aac|dts|truehd|flac|opus|pcm|atmos)?)([257])[.\s]([01])($|[\s._\-\]\)])`), "${1}${2}${3}${4}ch${5}"},
}

var (
	wwwDomainRegex      = regexp.MustCompile(`(?i)\bwww\.[a-z0-9\-]+(?:\.(?:co|com|org|net))?\.(?:com|net|org|info|xyz|lol|biz|cc|to|tv|me|io|ws|se|nu|ru|in|co|uk|mx|pw|club|site|online)\b`)
	leadingDomainRegex  = regexp.MustCompile(`(?i)^([a-z0-9\-]+\.(?:com|net|org|info|xyz|lol|biz|cc))(?:[\s._\-]+|$)`)
	trailingDomainRegex = regexp.MustCompile(`(?i)(?:^|[\s._\-]+)([a-z0-9]+\.(?:com|net|org|info|xyz|lol|biz|cc))$`)
	bracketGroupRegex   = regexp.MustCompile(`[\[\(\{]([^\[\]\(\)\{\}]*)[\]\)\}]`)
	strayBracketRegex   = regexp.MustCompile(`[\[\]\(\)\{\}]`)

	episodeTokenRegex    = regexp.MustCompile(`(?i)^s(\d{1,2})e(\d{1,3})(?:e(\d{1,3}))*$`)
	crossEpisodeRegex    = regexp.MustCompile(`(?i)^(\d{1,2})x(\d{2,3})$`)
	extraEpisodeRegex    = regexp.MustCompile(`(?i)^e(\d{1,3})$`)
	seasonOnlyRegex      = regexp.MustCompile(`(?i)^s\d{1,2}$`)
	romanTokenRegex      = regexp.MustCompile(`(?i)^(x{0,3})(ix|iv|v?i{0,3})$`)
	digitsOnlyTokenRegex = regexp.MustCompile(`^\d+$`)
	yearOnlyGroupRegex   = regexp.MustCompile(`^\d{4}$`)
)

// Tokenize splits a filename stem into tagged tokens using the default vocabulary.
func Tokenize(stem string) TokenStream {
	return DefaultVocabulary().Tokenize(stem)
}

// Tokenize splits a filename stem into tagged tokens.
func (v *Vocabulary) Tokenize(stem string) TokenStream {
	var out TokenStream

	s := strings.TrimSpace(stem)
	for _, rw := range compoundTerms {
		s = rw.re.ReplaceAllString(s, rw.repl)
	}

	for _, m := range wwwDomainRegex.FindAllString(s, -1) {
		out.Provenance = append(out.Provenance, m)
	}
	s = wwwDomainRegex.ReplaceAllString(s, " ")
	if m := leadingDomainRegex.FindStringSubmatch(s); m != nil && len(m[0]) < len(s) {
		out.Provenance = append(out.Provenance, m[1])
		s = s[len(m[0]):]
	}
	if m := trailingDomainRegex.FindStringSubmatch(s); m != nil && len(m[0]) < len(s) {
		out.Provenance = append(out.Provenance, m[1])
		s = s[:len(s)-len(m[0])]
	}

	var raw []Token
	last := 0
	for _, loc := range bracketGroupRegex.FindAllStringSubmatchIndex(s, -1) {
		raw = append(raw, splitSegment(s[last:loc[0]], false)...)
		inner := strings.TrimSpace(s[loc[2]:loc[3]])
		last = loc[1]

		switch {
		case inner == "":
		case yearOnlyGroupRegex.MatchString(inner):
			raw = append(raw, Token{Text: inner, Sep: " ", Bracketed: true})
		case v.allKnown(inner):
			group := splitSegment(inner, true)
			if len(group) > 0 {
				group[0].Sep = " "
			}
			raw = append(raw, group...)
		default:
			out.Provenance = append(out.Provenance, inner)
		}
	}
	raw = append(raw, splitSegment(s[last:], false)...)

	if len(raw) > 0 {
		raw[0].Sep = ""
	}
	out.Tokens = v.tag(raw)
	return out
}

// allKnown reports whether a bracket group holds only junk words and years.
func (v *Vocabulary) allKnown(inner string) bool {
	words := splitSegment(inner, true)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if yearOnlyGroupRegex.MatchString(w.Text) {
			continue
		}
		if !v.IsKnownJunk(w.Text) {
			return false
		}
	}
	return true
}

func isSeparator(r rune) bool {
	return r == '.' || r == '_' || r == '-' || unicode.IsSpace(r)
}

// splitSegment splits on separator runs, recording each run on the token that follows it.
func splitSegment(seg string, bracketed bool) []Token {
	seg = strayBracketRegex.ReplaceAllString(seg, " ")

	var tokens []Token
	var word, sep strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		tokens = append(tokens, Token{Text: word.String(), Sep: sep.String(), Bracketed: bracketed})
		word.Reset()
		sep.Reset()
	}

	for _, r := range seg {
		if isSeparator(r) {
			if word.Len() > 0 {
				flush()
			}
			sep.WriteRune(r)
			continue
		}
		word.WriteRune(r)
	}
	flush()

	if len(tokens) > 0 && tokens[0].Sep == "" {
		tokens[0].Sep = " "
	}
	return tokens
}

// tag assigns kinds in two passes: a context-free pass, then weak-junk
// promotion, which needs the neighbours' kinds.
func (v *Vocabulary) tag(tokens []Token) []Token {
	weak := make([]bool, len(tokens))
	strong := make([]bool, len(tokens))

	for i := range tokens {
		t := &tokens[i]
		lower := t.Lower()

		switch {
		case episodeTokenRegex.MatchString(t.Text), crossEpisodeRegex.MatchString(t.Text):
			t.Kind = TokenEpisode
		case i > 0 && tokens[i-1].Kind == TokenEpisode && extraEpisodeRegex.MatchString(t.Text):
			t.Kind = TokenEpisode
		case digitsOnlyTokenRegex.MatchString(t.Text):
			if len(t.Text) == 4 {
				t.Kind = TokenNumeric4
			} else {
				t.Kind = TokenNumeric
			}
		case seasonOnlyRegex.MatchString(t.Text):
			t.Kind = TokenJunk
			t.Class = JunkRelease
			strong[i] = true
		default:
			if class, ok := v.strongClass(lower); ok {
				t.Kind = TokenJunk
				t.Class = class
				strong[i] = true
			} else if v.IsGroup(lower) {
				t.Kind = TokenGroup
			} else if isRoman(t.Text) {
				t.Kind = TokenRoman
			} else {
				t.Kind = TokenWord
				_, weak[i] = v.weakClass(lower)
			}
		}
	}

	for i := range tokens {
		if !weak[i] {
			continue
		}
		promote := tokens[i].Bracketed
		if i > 0 {
			switch tokens[i-1].Kind {
			case TokenJunk, TokenEpisode, TokenNumeric4:
				promote = true
			}
		}
		if i+1 < len(tokens) && strong[i+1] {
			promote = true
		}
		if promote {
			tokens[i].Kind = TokenJunk
			tokens[i].Class, _ = v.weakClass(tokens[i].Lower())
		}
	}
	return tokens
}

func isRoman(s string) bool {
	if s == "" || len(s) > 4 {
		return false
	}
	return romanTokenRegex.MatchString(s)
}
