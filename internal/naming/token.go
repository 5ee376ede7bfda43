package naming

import "strings"

// TokenKind tags a single token of a filename stem.
type TokenKind int

const (
	TokenWord TokenKind = iota
	TokenNumeric4
	TokenNumeric
	TokenRoman
	TokenJunk
	TokenEpisode
	TokenGroup
)

func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenNumeric4:
		return "numeric-4"
	case TokenNumeric:
		return "numeric"
	case TokenRoman:
		return "roman"
	case TokenJunk:
		return "junk"
	case TokenEpisode:
		return "episode"
	case TokenGroup:
		return "group"
	default:
		return "unknown"
	}
}

// JunkClass says which collaborator a known-junk token is routed to.
type JunkClass int

const (
	JunkNone JunkClass = iota
	JunkResolution
	JunkCodec
	JunkSource
	JunkAudio
	JunkHDR
	JunkEdition
	JunkRelease
	JunkLocale
	JunkPlatform
	JunkOther
)

func (c JunkClass) String() string {
	switch c {
	case JunkResolution:
		return "resolution"
	case JunkCodec:
		return "codec"
	case JunkSource:
		return "source"
	case JunkAudio:
		return "audio"
	case JunkHDR:
		return "hdr"
	case JunkEdition:
		return "edition"
	case JunkRelease:
		return "release"
	case JunkLocale:
		return "locale"
	case JunkPlatform:
		return "platform"
	case JunkOther:
		return "other"
	default:
		return "none"
	}
}

// Token is one element of a tokenized stem. Sep holds the raw separator run
// that preceded the token in the stem ("" for the first token).
type Token struct {
	Text      string
	Kind      TokenKind
	Class     JunkClass
	Sep       string
	Bracketed bool
}

// Lower returns the lowercase token text.
func (t Token) Lower() string {
	return strings.ToLower(t.Text)
}

// IsJunk reports whether the token is known junk.
func (t Token) IsJunk() bool {
	return t.Kind == TokenJunk
}

// IsWordish reports whether the token can carry title text that is not a bare number.
func (t Token) IsWordish() bool {
	return t.Kind == TokenWord || t.Kind == TokenRoman
}

// TokenStream is the output of Tokenize.
type TokenStream struct {
	Tokens []Token
	// Provenance holds text removed from the stem as noise: advertising
	// domains and bracketed tags that were not years or known junk.
	Provenance []string
}

// Junk returns the known-junk tokens in stream order.
func (s TokenStream) Junk() []Token {
	var out []Token
	for _, t := range s.Tokens {
		if t.Kind == TokenJunk {
			out = append(out, t)
		}
	}
	return out
}

// HasWords reports whether any token is a non-numeric word.
func (s TokenStream) HasWords() bool {
	for _, t := range s.Tokens {
		if t.IsWordish() {
			return true
		}
	}
	return false
}
