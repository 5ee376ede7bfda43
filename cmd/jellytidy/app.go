package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Nomadcxx/jellytidy/internal/config"
	"github.com/Nomadcxx/jellytidy/internal/database"
	"github.com/Nomadcxx/jellytidy/internal/library"
	"github.com/Nomadcxx/jellytidy/internal/logging"
	"github.com/Nomadcxx/jellytidy/internal/plans"
	"github.com/Nomadcxx/jellytidy/internal/ui"
)

// app is the state shared by every command.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	fs       afero.Fs
	planPath string
}

func newApp() (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lc := cfg.LoggingConfig()
	if verbose {
		lc.Level = "debug"
		lc.Console = true
	}
	logger, err := logging.New(lc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	dir, err := cfg.PlansDir()
	if err != nil {
		logger.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		fs:       afero.NewOsFs(),
		planPath: plans.PlanPathIn(dir),
	}, nil
}

func (a *app) Close() {
	a.logger.Close()
}

// roots resolves the command line roots, falling back to [scan] roots.
func (a *app) roots(args []string) ([]string, error) {
	if len(args) == 0 {
		args = a.cfg.Scan.Roots
	}
	if len(args) == 0 {
		return nil, errors.New("no roots given (pass directories or set scan.roots in the config)")
	}
	out := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid root %s: %w", arg, err)
		}
		info, err := a.fs.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot access root: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("root %s is not a directory", abs)
		}
		out = append(out, abs)
	}
	return out, nil
}

// dest resolves the library destination: the flag wins over [library].
func (a *app) dest(flag string) (string, error) {
	dest := flag
	if dest == "" {
		dest = a.cfg.Library.Dest
	}
	if dest == "" {
		return "", nil
	}
	return filepath.Abs(dest)
}

func (a *app) builder(dest string) *plans.Builder {
	parser := a.cfg.Parser()
	grouper := library.NewGrouper(
		library.WithExtensions(a.cfg.Extensions()),
		library.WithVocabulary(parser.Vocabulary()),
	)
	return plans.NewBuilder(
		plans.WithParser(parser),
		plans.WithGrouper(grouper),
		plans.WithDestination(dest),
		plans.WithOSJunkCleanup(a.cfg.Scan.CleanOSJunk),
		plans.WithWorkers(a.cfg.Plan.Workers),
		plans.WithLogger(a.logger),
	)
}

func (a *app) walkOptions() library.WalkOptions {
	return library.WalkOptions{
		IncludeHidden: a.cfg.Scan.IncludeHidden,
		OnError: func(path string, err error) {
			a.logger.Warn("scan", "unreadable entry", logging.F("path", path), logging.F("error", err.Error()))
		},
	}
}

// scan walks roots into a batch.
func (a *app) scan(ctx context.Context, roots []string) ([]library.RawItem, error) {
	spinner := ui.NewSpinner(fmt.Sprintf("Scanning %d root(s)", len(roots)))
	spinner.Start()
	items, err := library.Walk(ctx, a.fs, roots, a.walkOptions())
	spinner.Stop()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	a.logger.Info("scan", "tree scanned", logging.F("roots", len(roots)), logging.F("items", len(items)))
	return items, nil
}

// analyze scans roots and builds the plan analysis.
func (a *app) analyze(ctx context.Context, roots []string, dest string) (*plans.Analysis, error) {
	if err := plans.ValidateDestination(roots, dest); err != nil {
		return nil, err
	}
	items, err := a.scan(ctx, roots)
	if err != nil {
		return nil, err
	}
	return a.builder(dest).Analyze(items)
}

// savePlan writes the pending plan and archives it in the history database.
func (a *app) savePlan(plan *plans.Plan) error {
	if err := plans.SaveTo(a.planPath, plan); err != nil {
		return err
	}
	a.logger.Info("plan", "plan saved", logging.F("plan", plan.ID), logging.F("path", a.planPath))
	if !a.cfg.Plan.History {
		return nil
	}
	return a.withHistory(func(h *database.HistoryDB) error {
		return h.SavePlan(plan)
	})
}

// loadPlan reads the pending plan.
func (a *app) loadPlan() (*plans.Plan, error) {
	plan, err := plans.LoadFrom(a.planPath)
	if errors.Is(err, plans.ErrNoPlan) {
		return nil, fmt.Errorf("%w (run 'jellytidy plan <root>' first)", err)
	}
	return plan, err
}

// withHistory opens the history database for fn. Failures are logged and
// returned.
func (a *app) withHistory(fn func(*database.HistoryDB) error) error {
	h, err := database.Open()
	if err != nil {
		a.logger.Error("history", "failed to open history", err)
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer h.Close()
	if err := fn(h); err != nil {
		a.logger.Error("history", "history update failed", err)
		return err
	}
	return nil
}
