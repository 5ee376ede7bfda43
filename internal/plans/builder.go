package plans

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/iter"

	"github.com/Nomadcxx/jellytidy/internal/collision"
	"github.com/Nomadcxx/jellytidy/internal/duplicates"
	"github.com/Nomadcxx/jellytidy/internal/library"
	"github.com/Nomadcxx/jellytidy/internal/logging"
	"github.com/Nomadcxx/jellytidy/internal/naming"
	"github.com/Nomadcxx/jellytidy/internal/quality"
)

var (
	ErrDestinationInsideSource = errors.New("destination is inside a source root")
	ErrDestinationNotAbsolute  = errors.New("destination is not an absolute path")
)

// Builder turns a directory snapshot into plan records. It never touches the
// filesystem.
type Builder struct {
	parser      *naming.Parser
	grouper     *library.Grouper
	dest        string
	cleanOSJunk bool
	workers     int
	logger      *logging.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithParser sets the filename parser.
func WithParser(p *naming.Parser) Option {
	return func(b *Builder) {
		if p != nil {
			b.parser = p
		}
	}
}

// WithGrouper sets the scope classifier.
func WithGrouper(g *library.Grouper) Option {
	return func(b *Builder) {
		if g != nil {
			b.grouper = g
		}
	}
}

// WithDestination sorts movies into dest/movies/<Letter>/<Title (Year)>/ and
// episodes into dest/tv/<Show>/Season NN/ instead of renaming in place.
func WithDestination(dest string) Option {
	return func(b *Builder) {
		if dest != "" {
			b.dest = filepath.Clean(dest)
		}
	}
}

// WithOSJunkCleanup plans deletion of .DS_Store, ._* and Thumbs.db files.
func WithOSJunkCleanup(enabled bool) Option {
	return func(b *Builder) {
		b.cleanOSJunk = enabled
	}
}

// WithWorkers bounds the per-scope fan-out. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n >= 0 {
			b.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder with default parser and extension sets.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		parser: naming.NewParser(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.grouper == nil {
		b.grouper = library.NewGrouper(library.WithVocabulary(b.parser.Vocabulary()))
	}
	return b
}

// Build plans items with a default Builder.
func Build(items []library.RawItem) ([]Record, error) {
	return NewBuilder().Build(items)
}

// ValidateDestination checks that dest is absolute and not inside any root.
func ValidateDestination(roots []string, dest string) error {
	if dest == "" {
		return nil
	}
	if !filepath.IsAbs(dest) {
		return fmt.Errorf("%w: %s", ErrDestinationNotAbsolute, dest)
	}
	dest = filepath.Clean(dest)
	for _, root := range roots {
		rel, err := filepath.Rel(filepath.Clean(root), dest)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return fmt.Errorf("%w: %s is under %s", ErrDestinationInsideSource, dest, root)
		}
	}
	return nil
}

// entry is the working state of one file while a plan is built.
type entry struct {
	item library.RawItem
	role library.Role

	// decided entries are final skips or deletes from the scope pass
	decided bool
	action  Action
	reason  Reason

	id    naming.Identity
	info  quality.Info
	dir   string // target directory
	stem  string // target stem, before the dup suffix
	ext   string
	flags []Flag
	final string // final base name
	dup   int

	// sidecars: index of the owning primary, -1 for none
	primary int
	tail    string
}

func (e *entry) decide(action Action, reason Reason) {
	e.decided = true
	e.action = action
	e.reason = reason
}

func (e *entry) flag(f Flag) {
	for _, x := range e.flags {
		if x == f {
			return
		}
	}
	e.flags = append(e.flags, f)
}

// Build validates the batch and emits one record per file item, sorted by
// source path. Directory items produce no records. The only error is a
// malformed batch.
func (b *Builder) Build(items []library.RawItem) ([]Record, error) {
	a, err := b.Analyze(items)
	if err != nil {
		return nil, err
	}
	return a.Records, nil
}

// Analyze builds the records of a batch and keeps what the reports need:
// every primary with its quality and every group holding more than one copy.
func (b *Builder) Analyze(items []library.RawItem) (*Analysis, error) {
	scopes, err := b.grouper.Group(items)
	if err != nil {
		return nil, err
	}

	// Scopes are independent until duplicate detection; order is preserved.
	mapper := iter.Mapper[library.Scope, []entry]{MaxGoroutines: b.workers}
	perScope := mapper.Map(scopes, func(s *library.Scope) []entry {
		return b.analyze(*s)
	})

	var entries []entry
	for _, es := range perScope {
		offset := len(entries)
		for _, e := range es {
			if e.primary >= 0 {
				e.primary += offset
			}
			entries = append(entries, e)
		}
	}

	groups := b.detectDuplicates(entries)
	b.resolveCollisions(entries)
	b.resolveSidecars(entries)

	a := &Analysis{Records: make([]Record, 0, len(entries))}
	for i := range entries {
		rec := b.record(entries, i)
		a.Records = append(a.Records, rec)
		if entries[i].role == library.RolePrimary {
			a.Primaries = append(a.Primaries, primaryOf(entries[i], rec))
		}
	}
	sortRecords(a.Records)
	sort.Slice(a.Primaries, func(i, j int) bool { return a.Primaries[i].Path < a.Primaries[j].Path })
	for _, g := range groups {
		if g.HasCopies() {
			a.Duplicates = append(a.Duplicates, g)
		}
	}

	s := Summarize(a.Records)
	b.logger.Info("planner", "plan built",
		logging.F("items", len(items)),
		logging.F("scopes", len(scopes)),
		logging.F("records", s.Total),
		logging.F("renames", s.Renames),
		logging.F("moves", s.Moves),
		logging.F("deletes", s.Deletes),
		logging.F("skips", s.Skips))
	return a, nil
}

// analyze classifies every file of one scope. Sidecar primary indexes are
// local to the returned slice.
func (b *Builder) analyze(s library.Scope) []entry {
	var out []entry
	ext := b.grouper.Extensions()

	add := func(it library.RawItem, role library.Role, action Action, reason Reason) {
		e := entry{item: it, role: role, primary: -1}
		e.decide(action, reason)
		out = append(out, e)
	}

	for _, it := range s.Excluded {
		add(it, ext.RoleOf(it), ActionSkip, ReasonExcludedScope)
	}
	for _, it := range s.OSJunk {
		if b.cleanOSJunk {
			add(it, library.RoleOSJunk, ActionDelete, ReasonOSJunk)
		} else {
			add(it, library.RoleOSJunk, ActionSkip, ReasonNotMedia)
		}
	}
	for _, it := range s.Other {
		add(it, library.RoleOther, ActionSkip, ReasonNotMedia)
	}
	for _, it := range s.Orphans {
		add(it, library.RoleSidecar, ActionSkip, ReasonSidecarOrphan)
	}

	unscoped := make(map[string]bool, len(s.Unscoped))
	for _, it := range s.Unscoped {
		unscoped[it.Path] = true
	}

	for _, ent := range s.Entities {
		idx := len(out)
		out = append(out, b.primary(s, ent.Primary, unscoped[ent.Primary.Path]))
		for _, sc := range ent.Sidecars {
			out = append(out, entry{item: sc.Item, role: library.RoleSidecar, primary: idx, tail: sc.Tail})
		}
	}

	b.logger.Debug("planner", "scope analyzed",
		logging.F("dir", s.Dir),
		logging.F("kind", s.Kind.String()),
		logging.F("files", len(out)))
	return out
}

func (b *Builder) primary(s library.Scope, it library.RawItem, unscoped bool) entry {
	e := entry{item: it, role: library.RolePrimary, primary: -1}
	e.id = b.parser.Parse(it.Stem())
	e.info = quality.Classify(e.id.Junk)
	e.ext = naming.CleanExtension(it.Ext)
	e.dir = s.Dir

	if e.id.AmbiguousYear {
		e.flag(FlagAmbiguousYear)
	}
	if e.info.HasUnknown() {
		e.flag(FlagUnknownQuality)
	}

	if unscoped {
		e.decide(ActionSkip, ReasonUnscopedEpisode)
		return e
	}

	switch s.Kind {
	case library.ScopeSeason:
		if e.id.Kind != naming.KindEpisode {
			e.decide(ActionSkip, ReasonUnparsed)
			return e
		}
		show := s.Show
		if show == "" {
			show = e.id.Title
		}
		if show == "" {
			e.decide(ActionSkip, ReasonUnparsed)
			return e
		}
		e.id.Title = show
		e.stem = naming.SanitizeName(naming.EpisodeName(show, e.id.EpisodeCode, e.id.EpisodeTitle))
		if b.dest != "" {
			e.dir = filepath.Join(b.dest, "tv", naming.SanitizeName(show), naming.SeasonFolder(e.id.Season))
		}

	case library.ScopeMovie, library.ScopeAmbiguous:
		if !e.id.Parsed() {
			e.decide(ActionSkip, ReasonUnparsed)
			return e
		}
		e.stem = naming.SanitizeName(e.id.DisplayName())
		if s.Kind == library.ScopeAmbiguous {
			// never moved, only normalized in place
			e.id.Kind = naming.KindUnknown
			e.flag(FlagAmbiguousDirectory)
		} else {
			e.id.Kind = naming.KindMovie
			if b.dest != "" {
				e.dir = filepath.Join(b.dest, "movies", naming.LetterBucket(e.id.Title), e.stem)
			}
		}

	default:
		e.decide(ActionSkip, ReasonUnparsed)
	}
	return e
}

// detectDuplicates marks redundant exact copies for deletion and appends
// version tags to alternate versions.
func (b *Builder) detectDuplicates(entries []entry) []duplicates.Group {
	var cands []duplicates.Candidate
	for i, e := range entries {
		if e.role != library.RolePrimary || e.decided {
			continue
		}
		cands = append(cands, duplicates.Candidate{
			ID:   i,
			Path: e.item.Path,
			Name: e.item.Name(),
			Size: e.item.Size,
			Key:  duplicates.KeyFor(e.dir, e.id),
			Info: e.info,
		})
	}

	groups := duplicates.Detect(cands)
	for _, g := range groups {
		for _, c := range g.Deleted() {
			entries[c.ID].decide(ActionDelete, ReasonExactDuplicate)
		}
		if g.HasCopies() {
			b.logger.Debug("planner", "copies found",
				logging.F("key", g.Key.String()),
				logging.F("copies", len(g.Members)),
				logging.F("deleted", len(g.Deleted())))
		}
		if !g.Tagged {
			continue
		}
		for _, c := range g.Kept() {
			if tag := c.Info.VersionTag(); tag != "" {
				e := &entries[c.ID]
				e.stem += " - " + tag
				e.flag(FlagAlternateVersion)
			}
		}
	}
	return groups
}

type collisionKey struct {
	dir  string
	stem string
}

// resolveCollisions names every surviving primary. Files that stay where
// they are reserve their names in their directory.
func (b *Builder) resolveCollisions(entries []entry) {
	reserved := make(map[string]collision.Reserved)
	for _, e := range entries {
		if !e.decided || e.action != ActionSkip {
			continue
		}
		if reserved[e.item.Dir] == nil {
			reserved[e.item.Dir] = collision.Reserved{}
		}
		reserved[e.item.Dir].Add(e.item.Name())
	}

	groups := make(map[collisionKey][]collision.Candidate)
	for i, e := range entries {
		if e.role != library.RolePrimary || e.decided {
			continue
		}
		k := collisionKey{dir: e.dir, stem: strings.ToLower(e.stem)}
		groups[k] = append(groups[k], collision.Candidate{
			ID:    i,
			Path:  e.item.Path,
			Ext:   e.ext,
			Color: e.info.Color,
			Tier:  e.info.Tier,
		})
	}

	keys := make([]collisionKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].dir != keys[j].dir {
			return keys[i].dir < keys[j].dir
		}
		return keys[i].stem < keys[j].stem
	})

	for _, k := range keys {
		cands := groups[k]
		collision.Sort(cands)
		if reserved[k.dir] == nil {
			reserved[k.dir] = collision.Reserved{}
		}
		stem := entries[cands[0].ID].stem
		for _, a := range collision.Resolve(stem, cands, reserved[k.dir]) {
			e := &entries[a.Candidate.ID]
			e.final = a.Name
			e.dup = a.Dup
			if a.Dup > 0 {
				e.flag(FlagCollision)
			}
		}
		if len(cands) > 1 {
			b.logger.Debug("planner", "collision resolved",
				logging.F("dir", k.dir),
				logging.F("stem", stem),
				logging.F("candidates", len(cands)))
		}
	}
}

// resolveSidecars places every surviving sidecar next to its primary. Names
// are claimed per directory, case-insensitively: files that stay first, then
// primaries, then sidecars in source path order. A sidecar whose target is
// already claimed stays where it is as a duplicate.
func (b *Builder) resolveSidecars(entries []entry) {
	claimed := make(map[string]map[string]bool)
	claim := func(dir, name string) bool {
		names := claimed[dir]
		if names == nil {
			names = make(map[string]bool)
			claimed[dir] = names
		}
		key := strings.ToLower(name)
		if names[key] {
			return false
		}
		names[key] = true
		return true
	}

	var sidecars []int
	for i := range entries {
		e := &entries[i]
		if e.role == library.RoleSidecar && e.primary >= 0 && !e.decided {
			owner := entries[e.primary]
			switch {
			case !owner.decided:
				sidecars = append(sidecars, i)
				continue
			case owner.action == ActionDelete:
				e.decide(ActionSkip, ReasonDuplicateSidecar)
			default:
				e.decide(ActionSkip, owner.reason)
			}
		}
		switch {
		case e.decided && e.action == ActionSkip:
			claim(e.item.Dir, e.item.Name())
		case !e.decided && e.role == library.RolePrimary:
			claim(e.dir, e.final)
		}
	}

	sort.Slice(sidecars, func(i, j int) bool {
		return entries[sidecars[i]].item.Path < entries[sidecars[j]].item.Path
	})
	for _, i := range sidecars {
		e := &entries[i]
		owner := entries[e.primary]
		name := strings.TrimSuffix(owner.final, owner.ext) + cleanTail(e.tail)
		if !claim(owner.dir, name) {
			e.decide(ActionSkip, ReasonDuplicateSidecar)
			claim(e.item.Dir, e.item.Name())
			b.logger.Debug("planner", "sidecar target taken",
				logging.F("path", e.item.Path),
				logging.F("target", filepath.Join(owner.dir, name)))
			continue
		}
		e.dir = owner.dir
		e.final = name
	}
}

func (b *Builder) record(entries []entry, i int) Record {
	e := entries[i]
	r := Record{
		SourcePath: e.item.Path,
		Role:       e.role.String(),
		Size:       e.item.Size,
	}

	owner := e
	if e.role == library.RoleSidecar && e.primary >= 0 {
		owner = entries[e.primary]
	}
	if owner.role == library.RolePrimary {
		r.QualityColor = owner.info.Color.String()
		r.Kind = owner.id.Kind.String()
		r.Title = owner.id.Title
		r.Year = owner.id.Year
	}
	if e.role == library.RolePrimary {
		r.Flags = append([]Flag(nil), e.flags...)
	}

	if e.decided {
		r.Action = e.action
		r.Reason = e.reason
		if e.action == ActionSkip {
			r.TargetPath = e.item.Path
		}
		return r
	}

	target := filepath.Join(e.dir, e.final)
	r.TargetPath = target
	switch {
	case target == e.item.Path:
		r.Action = ActionSkip
		r.Reason = ReasonAlreadyNormalized
	case filepath.Dir(target) == e.item.Dir:
		r.Action = ActionRename
	default:
		r.Action = ActionMove
	}
	if r.Action != ActionSkip {
		r.Reason = renameReason(e)
	}
	return r
}

func renameReason(e entry) Reason {
	if e.role == library.RoleSidecar {
		return ReasonSidecar
	}
	switch {
	case e.dup > 0:
		return ReasonCollisionResolved
	case hasFlag(e.flags, FlagAmbiguousDirectory):
		return ReasonAmbiguousDirectory
	case hasFlag(e.flags, FlagAmbiguousYear):
		return ReasonAmbiguousYear
	case hasFlag(e.flags, FlagUnknownQuality):
		return ReasonUnknownQuality
	default:
		return ReasonNormalized
	}
}

func hasFlag(flags []Flag, f Flag) bool {
	for _, x := range flags {
		if x == f {
			return true
		}
	}
	return false
}

// cleanTail lowercases the final extension of a sidecar tail.
func cleanTail(tail string) string {
	i := strings.LastIndex(tail, ".")
	if i < 0 {
		return tail
	}
	return tail[:i] + strings.ToLower(tail[i:])
}
