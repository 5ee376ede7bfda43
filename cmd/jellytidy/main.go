package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellytidy/internal/ui"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile string
	dryRun  bool
	verbose bool
	noColor bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jellytidy",
		Short: "Normalize messy media libraries into Jellyfin naming",
		Long: `jellytidy reads a messy tree of video and subtitle files, works out
the title, year and quality of each, and writes a plan of renames, moves and
deletions. Nothing on disk changes until the plan is reviewed and applied.

Typical workflow:
  jellytidy plan /srv/downloads      # build and save a plan
  jellytidy show                     # inspect it
  jellytidy review                   # include/exclude changes interactively
  jellytidy apply                    # apply after typing YES`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				ui.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/jellytidy/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "check every change without touching files")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newQualityCmd())
	rootCmd.AddCommand(newDuplicatesCmd())
	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error("Error:"), err)
		stop()
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jellytidy %s\n", version)
		},
	}
}
