package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellytidy/internal/config"
	"github.com/Nomadcxx/jellytidy/internal/plans"
	"github.com/Nomadcxx/jellytidy/internal/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage jellytidy configuration",
		Long: `Commands for managing jellytidy configuration.

The config file is stored at: ~/.config/jellytidy/config.toml

Examples:
  jellytidy config init              # Create default config file
  jellytidy config show              # Print the effective configuration
  jellytidy config check             # Check roots and library paths
  jellytidy config path              # Show config file path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigCheckCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

// configPath is --config or the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}

func loadConfig() (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long: `Create a new configuration file with default values.

Edit the file to set the directories to scan and, optionally, the sorted
library destination.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			if err := config.DefaultConfig().SaveTo(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			ui.SuccessMsg("Created config file: %s", path)
			fmt.Println("\nNext steps:")
			fmt.Println("  1. Set scan.roots (and library.dest to sort into a library)")
			fmt.Println("  2. Run 'jellytidy config check' to verify the paths")
			fmt.Println("  3. Run 'jellytidy plan' to see what would change")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults and JELLYTIDY_* environment
overrides are applied, in config file syntax.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s does not exist, showing defaults\n\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n\n", path)
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.ToTOML())
			return nil
		},
	}
}

func newConfigCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the configured paths",
		Long: `Verify that the configuration is usable:

  - scan roots exist and are directories
  - the library destination exists and is not inside a root
  - the plan directory can be created
  - permission settings resolve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			failed := 0
			check := func(label string, err error) {
				if err != nil {
					ui.ErrorMsg("%s: %v", label, err)
					failed++
					return
				}
				ui.SuccessMsg("%s", label)
			}

			if len(cfg.Scan.Roots) == 0 {
				ui.WarningMsg("No scan.roots configured; pass directories on the command line")
			}
			for _, root := range cfg.Scan.Roots {
				check("root "+root, isDir(root))
			}
			if cfg.Library.Dest != "" {
				err := isDir(cfg.Library.Dest)
				if err == nil {
					err = plans.ValidateDestination(cfg.Scan.Roots, cfg.Library.Dest)
				}
				check("library "+cfg.Library.Dest, err)
			}

			dir, err := cfg.PlansDir()
			if err == nil {
				err = os.MkdirAll(dir, 0755)
			}
			check("plan directory "+dir, err)

			_, err = cfg.Permissions.Policy()
			check("permissions", err)

			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func isDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	return nil
}
