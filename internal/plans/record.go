package plans

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Action is what applying a record does.
type Action string

const (
	ActionRename Action = "rename"
	ActionMove   Action = "move"
	ActionSkip   Action = "skip"
	ActionDelete Action = "delete"
)

// Reason explains a record's action.
type Reason string

const (
	ReasonExcludedScope      Reason = "excluded-scope"
	ReasonUnparsed           Reason = "unparsed"
	ReasonAlreadyNormalized  Reason = "already-normalized"
	ReasonSidecarOrphan      Reason = "sidecar-orphan"
	ReasonDuplicateSidecar   Reason = "duplicate-sidecar"
	ReasonUnscopedEpisode    Reason = "unscoped-episode"
	ReasonNotMedia           Reason = "not-media"
	ReasonExactDuplicate     Reason = "exact-duplicate"
	ReasonOSJunk             Reason = "os-junk"
	ReasonNormalized         Reason = "normalized"
	ReasonCollisionResolved  Reason = "collision-resolved"
	ReasonAmbiguousYear      Reason = "ambiguous-year"
	ReasonAmbiguousDirectory Reason = "ambiguous-directory"
	ReasonUnknownQuality     Reason = "unknown-quality"
	ReasonSidecar            Reason = "sidecar"
)

// Flag marks a record for human review.
type Flag string

const (
	FlagAmbiguousYear      Flag = "ambiguous-year"
	FlagAmbiguousDirectory Flag = "ambiguous-directory"
	FlagUnknownQuality     Flag = "unknown-quality"
	FlagCollision          Flag = "collision"
	FlagAlternateVersion   Flag = "alternate-version"
)

// Record is one planned operation. TargetPath equals SourcePath for skips
// and is empty for deletes.
type Record struct {
	SourcePath   string `json:"source_path" yaml:"source_path"`
	TargetPath   string `json:"target_path" yaml:"target_path"`
	Action       Action `json:"action" yaml:"action"`
	Reason       Reason `json:"reason_code" yaml:"reason_code"`
	QualityColor string `json:"quality_color" yaml:"quality_color"`
	Flags        []Flag `json:"flags,omitempty" yaml:"flags,omitempty"`
	Role         string `json:"role" yaml:"role"`
	Kind         string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Year         int    `json:"year,omitempty" yaml:"year,omitempty"`
	Size         int64  `json:"size" yaml:"size"`
}

// IsNoop reports whether applying the record changes nothing.
func (r Record) IsNoop() bool {
	return r.Action == ActionSkip
}

// HasFlag reports whether the record carries f.
func (r Record) HasFlag(f Flag) bool {
	return hasFlag(r.Flags, f)
}

// Summary contains counts for a plan.
type Summary struct {
	Total         int   `json:"total" yaml:"total"`
	Renames       int   `json:"renames" yaml:"renames"`
	Moves         int   `json:"moves" yaml:"moves"`
	Deletes       int   `json:"deletes" yaml:"deletes"`
	Skips         int   `json:"skips" yaml:"skips"`
	Flagged       int   `json:"flagged" yaml:"flagged"`
	BytesToDelete int64 `json:"bytes_to_delete" yaml:"bytes_to_delete"`
	BytesToMove   int64 `json:"bytes_to_move" yaml:"bytes_to_move"`
}

// Summarize counts records by action.
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Action {
		case ActionRename:
			s.Renames++
		case ActionMove:
			s.Moves++
			s.BytesToMove += r.Size
		case ActionDelete:
			s.Deletes++
			s.BytesToDelete += r.Size
		default:
			s.Skips++
		}
		if len(r.Flags) > 0 {
			s.Flagged++
		}
	}
	return s
}

// Plan is the persisted artifact handed to review and apply.
type Plan struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Command   string    `json:"command" yaml:"command"`
	Roots     []string  `json:"roots" yaml:"roots"`
	Dest      string    `json:"dest,omitempty" yaml:"dest,omitempty"`
	Summary   Summary   `json:"summary" yaml:"summary"`
	Records   []Record  `json:"records" yaml:"records"`
}

// NewPlan wraps records in a Plan with a fresh ID.
func NewPlan(command string, roots []string, dest string, records []Record) *Plan {
	return &Plan{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Command:   command,
		Roots:     append([]string(nil), roots...),
		Dest:      dest,
		Summary:   Summarize(records),
		Records:   records,
	}
}

// Pending returns the records that change something.
func (p *Plan) Pending() []Record {
	var out []Record
	for _, r := range p.Records {
		if !r.IsNoop() {
			out = append(out, r)
		}
	}
	return out
}

// IsNoop reports whether every record is a skip.
func (p *Plan) IsNoop() bool {
	return len(p.Pending()) == 0
}

// Filter returns a copy of the plan holding only the records keep accepts.
func (p *Plan) Filter(keep func(Record) bool) *Plan {
	out := *p
	out.Records = nil
	for _, r := range p.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	out.Summary = Summarize(out.Records)
	return &out
}

func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SourcePath < records[j].SourcePath
	})
}
