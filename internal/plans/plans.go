// Package plans builds, persists and exports change plans.
//
// A plan is an ordered list of records, one per file of the scanned tree,
// each saying whether the file is renamed, moved, deleted or left alone and
// why. Building a plan never touches the filesystem; the pending plan is
// kept as JSON under ~/.config/jellytidy/plans until it is applied.
package plans

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Nomadcxx/jellytidy/internal/paths"
)

const planFileName = "plan.json"

// ErrNoPlan is returned when no pending plan exists.
var ErrNoPlan = errors.New("no pending plan")

// GetPlansDir returns the directory for plan files
func GetPlansDir() (string, error) {
	dir, err := paths.PlansDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve plans directory: %w", err)
	}
	return dir, nil
}

// PlanPath returns the path of the pending plan.
func PlanPath() (string, error) {
	dir, err := GetPlansDir()
	if err != nil {
		return "", err
	}
	return PlanPathIn(dir), nil
}

// PlanPathIn returns the pending plan path inside dir.
func PlanPathIn(dir string) string {
	return filepath.Join(dir, planFileName)
}

// Save writes the pending plan.
func Save(plan *Plan) error {
	path, err := PlanPath()
	if err != nil {
		return err
	}
	return SaveTo(path, plan)
}

// SaveTo writes plan as indented JSON, replacing any file at path atomically.
func SaveTo(path string, plan *Plan) error {
	if plan == nil {
		return errors.New("nil plan")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plans directory: %w", err)
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace plan: %w", err)
	}
	return nil
}

// Load reads the pending plan. It returns ErrNoPlan when there is none.
func Load() (*Plan, error) {
	path, err := PlanPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a plan file. It returns ErrNoPlan when the file does not
// exist.
func LoadFrom(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoPlan
		}
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}
	return &plan, nil
}

// Delete removes the pending plan. A missing plan is not an error.
func Delete() error {
	path, err := PlanPath()
	if err != nil {
		return err
	}
	return DeleteFrom(path)
}

// DeleteFrom removes the plan file at path. A missing file is not an error.
func DeleteFrom(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	return nil
}

// Archive renames the pending plan to plan.json.old, replacing an older
// archive.
func Archive() error {
	path, err := PlanPath()
	if err != nil {
		return err
	}
	return ArchiveFrom(path)
}

// ArchiveFrom renames the plan file at path to path+".old".
func ArchiveFrom(path string) error {
	if err := os.Rename(path, path+".old"); err != nil {
		if os.IsNotExist(err) {
			return ErrNoPlan
		}
		return fmt.Errorf("failed to archive plan: %w", err)
	}
	return nil
}
