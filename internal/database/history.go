package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Nomadcxx/jellytidy/internal/plans"
)

// PlanStatus tracks what happened to an archived plan.
type PlanStatus string

const (
	StatusBuilt     PlanStatus = "built"
	StatusApplied   PlanStatus = "applied"
	StatusPartial   PlanStatus = "partial"
	StatusDiscarded PlanStatus = "discarded"
	StatusDryRun    PlanStatus = "dry-run"
)

var (
	ErrPlanNotFound  = errors.New("plan not found")
	ErrAmbiguousPlan = errors.New("plan id prefix matches more than one plan")
)

// PlanRun is one row of the plan history.
type PlanRun struct {
	ID        string
	CreatedAt time.Time
	Command   string
	Roots     []string
	Dest      string
	Status    PlanStatus
	Summary   plans.Summary
	UpdatedAt time.Time
}

// rootsSep separates roots in the roots column; NUL cannot occur in a path.
const rootsSep = "\x00"

// SavePlan archives a plan and its records. Saving the same plan twice
// replaces the earlier copy.
func (h *HistoryDB) SavePlan(plan *plans.Plan) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	tx, err := h.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM plan_records WHERE plan_id = ?`, plan.ID); err != nil {
		return err
	}

	s := plan.Summary
	_, err = tx.Exec(`
		INSERT INTO plans (
			id, created_at, command, roots, dest, status,
			total, renames, moves, deletes, skips, flagged, bytes_to_delete
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			total = excluded.total,
			renames = excluded.renames,
			moves = excluded.moves,
			deletes = excluded.deletes,
			skips = excluded.skips,
			flagged = excluded.flagged,
			bytes_to_delete = excluded.bytes_to_delete,
			updated_at = CURRENT_TIMESTAMP
	`, plan.ID, plan.CreatedAt.UTC(), plan.Command, strings.Join(plan.Roots, rootsSep), plan.Dest, StatusBuilt,
		s.Total, s.Renames, s.Moves, s.Deletes, s.Skips, s.Flagged, s.BytesToDelete)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO plan_records (
			plan_id, seq, source_path, target_path, action, reason_code,
			quality_color, flags, role, kind, title, year, size
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range plan.Records {
		_, err := stmt.Exec(plan.ID, i, r.SourcePath, r.TargetPath, r.Action, r.Reason,
			r.QualityColor, joinFlags(r.Flags), r.Role, r.Kind, r.Title, r.Year, r.Size)
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %w", r.SourcePath, err)
		}
	}

	return tx.Commit()
}

// SetStatus updates an archived plan's status.
func (h *HistoryDB) SetStatus(id string, status PlanStatus) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.db.Exec(`UPDATE plans SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	return nil
}

// ListPlans returns the most recent plans, newest first.
func (h *HistoryDB) ListPlans(limit int) ([]PlanRun, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.Query(`
		SELECT id, created_at, command, roots, COALESCE(dest, ''), status,
		       total, renames, moves, deletes, skips, flagged, bytes_to_delete, updated_at
		FROM plans
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []PlanRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (PlanRun, error) {
	var run PlanRun
	var roots, status string
	err := row.Scan(&run.ID, &run.CreatedAt, &run.Command, &roots, &run.Dest, &status,
		&run.Summary.Total, &run.Summary.Renames, &run.Summary.Moves, &run.Summary.Deletes,
		&run.Summary.Skips, &run.Summary.Flagged, &run.Summary.BytesToDelete, &run.UpdatedAt)
	if err != nil {
		return run, err
	}
	if roots != "" {
		run.Roots = strings.Split(roots, rootsSep)
	}
	run.Status = PlanStatus(status)
	return run, nil
}

// ResolveID expands a unique id prefix to a full plan id.
func (h *HistoryDB) ResolveID(prefix string) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.Query(`SELECT id FROM plans WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(prefix)+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrPlanNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousPlan, prefix)
	}
}

// LoadPlan reads an archived plan back, records in their original order.
func (h *HistoryDB) LoadPlan(id string) (*plans.Plan, PlanStatus, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	run, err := scanRun(h.db.QueryRow(`
		SELECT id, created_at, command, roots, COALESCE(dest, ''), status,
		       total, renames, moves, deletes, skips, flagged, bytes_to_delete, updated_at
		FROM plans WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	if err != nil {
		return nil, "", err
	}

	rows, err := h.db.Query(`
		SELECT source_path, COALESCE(target_path, ''), action, reason_code,
		       COALESCE(quality_color, ''), COALESCE(flags, ''), COALESCE(role, ''),
		       COALESCE(kind, ''), COALESCE(title, ''), COALESCE(year, 0), size
		FROM plan_records WHERE plan_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	plan := &plans.Plan{
		ID:        run.ID,
		CreatedAt: run.CreatedAt,
		Command:   run.Command,
		Roots:     run.Roots,
		Dest:      run.Dest,
	}
	for rows.Next() {
		var r plans.Record
		var action, reason, flags string
		err := rows.Scan(&r.SourcePath, &r.TargetPath, &action, &reason, &r.QualityColor,
			&flags, &r.Role, &r.Kind, &r.Title, &r.Year, &r.Size)
		if err != nil {
			return nil, "", err
		}
		r.Action = plans.Action(action)
		r.Reason = plans.Reason(reason)
		r.Flags = splitFlags(flags)
		plan.Records = append(plan.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	plan.Summary = plans.Summarize(plan.Records)
	return plan, run.Status, nil
}

// PruneBefore deletes plans created before cutoff and returns how many went.
func (h *HistoryDB) PruneBefore(cutoff time.Time) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.db.Exec(`DELETE FROM plans WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExportPlan writes a plan into a fresh SQLite file at path. An existing file
// is never overwritten.
func ExportPlan(path string, plan *plans.Plan) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite %s", path)
	}
	h, err := OpenPath(path)
	if err != nil {
		return err
	}
	if err := h.SavePlan(plan); err != nil {
		h.Close()
		return err
	}
	return h.Close()
}

func joinFlags(flags []plans.Flag) string {
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = string(f)
	}
	return strings.Join(parts, ";")
}

func splitFlags(s string) []plans.Flag {
	if s == "" {
		return nil
	}
	var out []plans.Flag
	for _, f := range strings.Split(s, ";") {
		out = append(out, plans.Flag(f))
	}
	return out
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
