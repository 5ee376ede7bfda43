package database

import (
	"time"
)

// OperationStatus is the outcome of one applied record.
type OperationStatus string

const (
	OpDone    OperationStatus = "done"
	OpFailed  OperationStatus = "failed"
	OpSkipped OperationStatus = "skipped"
)

// ExecutedBy defines who/what triggered the operation
type ExecutedBy string

const (
	ExecWatcher ExecutedBy = "watcher"
	ExecCLI     ExecutedBy = "cli"
	ExecReview  ExecutedBy = "review"
)

// OperationLog represents a logged operation
type OperationLog struct {
	ID            int64
	PlanID        string
	OperationType string
	SourcePath    string
	TargetPath    string
	Reason        string
	Status        OperationStatus
	Error         string
	Bytes         int64
	ExecutedBy    ExecutedBy
	ExecutedAt    time.Time
}

// LogOperation records an operation in the audit log
func (h *HistoryDB) LogOperation(op OperationLog) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.Exec(`
		INSERT INTO operations_log (
			plan_id, operation_type, source_path, target_path, reason,
			status, error, bytes, executed_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, op.PlanID, op.OperationType, op.SourcePath, op.TargetPath, op.Reason,
		op.Status, op.Error, op.Bytes, op.ExecutedBy)

	return err
}

// GetRecentOperations returns the most recent operations. An empty planID
// matches every plan.
func (h *HistoryDB) GetRecentOperations(planID string, limit int) ([]OperationLog, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.Query(`
		SELECT id, COALESCE(plan_id, ''), operation_type, source_path, COALESCE(target_path, ''),
		       COALESCE(reason, ''), status, COALESCE(error, ''), bytes,
		       executed_by, executed_at
		FROM operations_log
		WHERE ? = '' OR plan_id = ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?
	`, planID, planID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []OperationLog
	for rows.Next() {
		var op OperationLog
		var status, execBy string
		err := rows.Scan(
			&op.ID, &op.PlanID, &op.OperationType, &op.SourcePath, &op.TargetPath,
			&op.Reason, &status, &op.Error, &op.Bytes, &execBy, &op.ExecutedAt,
		)
		if err != nil {
			return nil, err
		}
		op.Status = OperationStatus(status)
		op.ExecutedBy = ExecutedBy(execBy)
		ops = append(ops, op)
	}

	return ops, rows.Err()
}

// GetOperationStats returns counts per operation type and the bytes freed by
// completed deletes.
func (h *HistoryDB) GetOperationStats() (map[string]int, int64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.Query(`
		SELECT operation_type, COUNT(*) FROM operations_log
		WHERE status = 'done'
		GROUP BY operation_type
	`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var opType string
		var count int
		if err := rows.Scan(&opType, &count); err != nil {
			return nil, 0, err
		}
		counts[opType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var totalFreed int64
	err = h.db.QueryRow(`
		SELECT COALESCE(SUM(bytes), 0) FROM operations_log
		WHERE operation_type = 'delete' AND status = 'done'
	`).Scan(&totalFreed)
	if err != nil {
		return nil, 0, err
	}

	return counts, totalFreed, nil
}
