package naming

import "time"

// MediaKind is the inferred kind of a primary video.
type MediaKind int

const (
	KindUnknown MediaKind = iota
	KindMovie
	KindEpisode
)

func (k MediaKind) String() string {
	switch k {
	case KindMovie:
		return "movie"
	case KindEpisode:
		return "episode"
	default:
		return "unknown"
	}
}

// Identity is the structured identity inferred from a filename stem.
type Identity struct {
	Title  string
	Year   int // 0 when absent
	Sequel string
	Kind   MediaKind

	Season       int
	Episode      int
	EpisodeEnd   int
	EpisodeTitle string
	EpisodeCode  string

	// Junk holds the known release markers, in stem order, for the quality
	// classifier.
	Junk []Token
	// Provenance holds noise stripped from the title (domains, tracker tags,
	// scene groups, trailing unknown words).
	Provenance []string

	AmbiguousYear bool
}

// HasYear reports whether a release year was found.
func (id Identity) HasYear() bool {
	return id.Year > 0
}

// Parsed reports whether the stem produced a usable title.
func (id Identity) Parsed() bool {
	return id.Title != ""
}

// DisplayName returns "Title (Year)", or just the title when the year is absent.
func (id Identity) DisplayName() string {
	return MovieName(id.Title, id.Year)
}

// Parser turns filename stems into identities.
type Parser struct {
	vocab       *Vocabulary
	currentYear int
}

// Option configures a Parser.
type Option func(*Parser)

// WithVocabulary replaces the default junk vocabulary.
func WithVocabulary(v *Vocabulary) Option {
	return func(p *Parser) {
		if v != nil {
			p.vocab = v
		}
	}
}

// WithCurrentYear pins the upper bound for release years.
func WithCurrentYear(year int) Option {
	return func(p *Parser) {
		if year > 0 {
			p.currentYear = year
		}
	}
}

// NewParser creates a Parser. The current year defaults to the wall clock.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		vocab:       DefaultVocabulary(),
		currentYear: time.Now().Year(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Vocabulary returns the parser's junk vocabulary.
func (p *Parser) Vocabulary() *Vocabulary {
	return p.vocab
}

// CurrentYear returns the upper bound used for release years.
func (p *Parser) CurrentYear() int {
	return p.currentYear
}

// Parse infers an identity from a filename stem (extension already removed).
func Parse(stem string) Identity {
	return NewParser().Parse(stem)
}

// Parse infers an identity from a filename stem (extension already removed).
// Kind is Episode when the stem carries an episode marker and Movie otherwise;
// the directory context may later downgrade it.
func (p *Parser) Parse(stem string) Identity {
	stream := p.vocab.Tokenize(stem)
	tokens := stream.Tokens

	id := Identity{
		Kind:       KindMovie,
		Junk:       stream.Junk(),
		Provenance: append([]string(nil), stream.Provenance...),
	}

	if m, ok := FindEpisode(tokens); ok {
		head := tokens[:m.Index]
		yr := ExtractYear(head, p.currentYear)
		title := BuildTitle(head, yr.Index)

		id.Kind = KindEpisode
		id.Title = title.Text
		id.Year = yr.Year
		id.Season = m.Season
		id.Episode = m.Episode
		id.EpisodeEnd = m.EpisodeEnd
		id.EpisodeCode = m.Code()
		id.EpisodeTitle = EpisodeTitle(tokens, m, title.Text)
		id.Provenance = append(id.Provenance, title.Provenance...)
		return id
	}

	yr := ExtractYear(tokens, p.currentYear)
	title := BuildTitle(tokens, yr.Index)

	id.Title = title.Text
	id.Year = yr.Year
	id.Sequel = title.Sequel
	id.AmbiguousYear = yr.Ambiguous
	id.Provenance = append(id.Provenance, title.Provenance...)
	return id
}
