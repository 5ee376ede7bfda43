package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Nomadcxx/jellytidy/internal/library"
	"github.com/Nomadcxx/jellytidy/internal/logging"
	"github.com/Nomadcxx/jellytidy/internal/naming"
	"github.com/Nomadcxx/jellytidy/internal/paths"
	"github.com/Nomadcxx/jellytidy/internal/plans"
)

type Config struct {
	Scan        ScanConfig        `mapstructure:"scan"`
	Naming      NamingConfig      `mapstructure:"naming"`
	Library     LibraryConfig     `mapstructure:"library"`
	Plan        PlanConfig        `mapstructure:"plan"`
	Watch       WatchConfig       `mapstructure:"watch"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Permissions PermissionsConfig `mapstructure:"permissions"`
}

// ScanConfig controls which files are read and how they are classified.
type ScanConfig struct {
	Roots             []string `mapstructure:"roots"`
	PrimaryExtensions []string `mapstructure:"primary_extensions"`
	SidecarExtensions []string `mapstructure:"sidecar_extensions"`
	IncludeHidden     bool     `mapstructure:"include_hidden"`
	CleanOSJunk       bool     `mapstructure:"clean_os_junk"`
}

// NamingConfig extends the filename vocabulary.
type NamingConfig struct {
	ExtraJunk   []string `mapstructure:"extra_junk"`
	ExtraGroups []string `mapstructure:"extra_groups"`
	// CurrentYear caps accepted release years. Zero means the wall clock.
	CurrentYear int `mapstructure:"current_year"`
}

// LibraryConfig is the optional sorted library.
type LibraryConfig struct {
	// Dest, when set, moves movies to dest/movies/<Letter>/<Title (Year)>/ and
	// episodes to dest/tv/<Show>/Season NN/.
	Dest string `mapstructure:"dest"`
}

type PlanConfig struct {
	// Dir overrides ~/.config/jellytidy/plans.
	Dir     string `mapstructure:"dir"`
	Format  string `mapstructure:"format"`
	Workers int    `mapstructure:"workers"`
	// History archives every saved plan in the SQLite history database.
	History bool `mapstructure:"history"`
}

type WatchConfig struct {
	DebounceSeconds int `mapstructure:"debounce_seconds"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Roots:             []string{},
			PrimaryExtensions: append([]string(nil), library.DefaultPrimaryExtensions...),
			SidecarExtensions: append([]string(nil), library.DefaultSidecarExtensions...),
			IncludeHidden:     false,
			CleanOSJunk:       true,
		},
		Naming: NamingConfig{
			ExtraJunk:   []string{},
			ExtraGroups: []string{},
		},
		Plan: PlanConfig{
			Format:  "json",
			Workers: 0,
			History: true,
		},
		Watch: WatchConfig{
			DebounceSeconds: 5,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// Load loads configuration from the default path or returns defaults
func Load() (*Config, error) {
	configPath, err := paths.ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from path. A missing file yields defaults.
// JELLYTIDY_* environment variables override file values, e.g.
// JELLYTIDY_LIBRARY_DEST.
func LoadFrom(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix("jellytidy")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	// AutomaticEnv only applies to keys viper already knows about.
	v.SetDefault("scan.include_hidden", cfg.Scan.IncludeHidden)
	v.SetDefault("scan.clean_os_junk", cfg.Scan.CleanOSJunk)
	v.SetDefault("library.dest", cfg.Library.Dest)
	v.SetDefault("plan.dir", cfg.Plan.Dir)
	v.SetDefault("plan.format", cfg.Plan.Format)
	v.SetDefault("plan.workers", cfg.Plan.Workers)
	v.SetDefault("plan.history", cfg.Plan.History)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	for _, root := range c.Scan.Roots {
		if !filepath.IsAbs(root) {
			return fmt.Errorf("scan root %q is not absolute", root)
		}
	}
	if c.Library.Dest != "" && !filepath.IsAbs(c.Library.Dest) {
		return fmt.Errorf("library dest %q is not absolute", c.Library.Dest)
	}
	if c.Plan.Workers < 0 {
		return fmt.Errorf("plan workers must not be negative")
	}
	if c.Plan.Format != "" {
		if _, err := plans.ParseFormat(c.Plan.Format); err != nil {
			return err
		}
	}
	if _, err := c.Permissions.ParseFileMode(); err != nil {
		return fmt.Errorf("permissions file_mode: %w", err)
	}
	if _, err := c.Permissions.ParseDirMode(); err != nil {
		return fmt.Errorf("permissions dir_mode: %w", err)
	}
	return nil
}

// Save saves configuration to the default path
func (c *Config) Save() error {
	configFile, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configFile)
}

// SaveTo writes the configuration as TOML to path.
func (c *Config) SaveTo(configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}
	return os.WriteFile(configFile, []byte(c.ToTOML()), 0644)
}

func ConfigPath() (string, error) {
	return paths.ConfigPath()
}

func ConfigExists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Extensions returns the configured extension sets.
func (c *Config) Extensions() library.Extensions {
	return library.NewExtensions(c.Scan.PrimaryExtensions, c.Scan.SidecarExtensions)
}

// Parser builds a filename parser with the configured vocabulary.
func (c *Config) Parser() *naming.Parser {
	vocab := naming.DefaultVocabulary()
	vocab.AddJunk(c.Naming.ExtraJunk...)
	vocab.AddGroups(c.Naming.ExtraGroups...)
	return naming.NewParser(naming.WithVocabulary(vocab), naming.WithCurrentYear(c.Naming.CurrentYear))
}

// PlansDir returns the configured plan directory.
func (c *Config) PlansDir() (string, error) {
	if c.Plan.Dir != "" {
		return c.Plan.Dir, nil
	}
	return paths.PlansDir()
}

// LoggingConfig converts the [logging] section for logging.New.
func (c *Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	if c.Logging.Level != "" {
		lc.Level = c.Logging.Level
	}
	lc.File = c.Logging.File
	if c.Logging.MaxSizeMB > 0 {
		lc.MaxSizeMB = c.Logging.MaxSizeMB
	}
	if c.Logging.MaxBackups > 0 {
		lc.MaxBackups = c.Logging.MaxBackups
	}
	return lc
}

func (c *Config) ToTOML() string {
	base := fmt.Sprintf(`# jellytidy configuration
# Generated by: jellytidy config init

# ============================================================================
# SCAN
# Directories to normalize and the files that count as media
# ============================================================================
[scan]
roots = %s

# Video files that carry an identity
primary_extensions = %s

# Subtitles and metadata that follow their video
sidecar_extensions = %s

# Descend into dot-directories
include_hidden = %v

# Plan deletion of .DS_Store, ._* and Thumbs.db
clean_os_junk = %v

# ============================================================================
# NAMING
# ============================================================================
[naming]
# Words stripped from titles in addition to the built-in list
extra_junk = %s

# Release group tags stripped from titles
extra_groups = %s

# Latest accepted release year (0 = this year)
current_year = %d

# ============================================================================
# LIBRARY
# Optional sorted destination: movies/<Letter>/<Title (Year)>/ and
# tv/<Show>/Season NN/. Empty renames files in place.
# ============================================================================
[library]
dest = %q

# ============================================================================
# PLAN
# ============================================================================
[plan]
# Empty uses ~/.config/jellytidy/plans
dir = %q

# Default export format: json, csv, yaml or sqlite
format = %q

# Parallel directory parsing (0 = number of CPUs)
workers = %d

# Keep every saved plan in ~/.config/jellytidy/history.db
history = %v

# ============================================================================
# WATCH
# ============================================================================
[watch]
debounce_seconds = %d

# ============================================================================
# LOGGING
# ============================================================================
[logging]
level = %q
file = %q
max_size_mb = %d
max_backups = %d
`,
		formatStringSlice(c.Scan.Roots),
		formatStringSlice(c.Scan.PrimaryExtensions),
		formatStringSlice(c.Scan.SidecarExtensions),
		c.Scan.IncludeHidden,
		c.Scan.CleanOSJunk,
		formatStringSlice(c.Naming.ExtraJunk),
		formatStringSlice(c.Naming.ExtraGroups),
		c.Naming.CurrentYear,
		c.Library.Dest,
		c.Plan.Dir,
		c.Plan.Format,
		c.Plan.Workers,
		c.Plan.History,
		c.Watch.DebounceSeconds,
		c.Logging.Level,
		c.Logging.File,
		c.Logging.MaxSizeMB,
		c.Logging.MaxBackups,
	)

	// Append permissions if configured
	if c.Permissions.WantsOwnership() || c.Permissions.WantsMode() {
		perm := "\n# ============================================================================\n# PERMISSIONS\n# Ownership and modes applied to moved files and created directories\n# ============================================================================\n[permissions]\n"
		if c.Permissions.User != "" {
			perm += fmt.Sprintf("user = %q\n", c.Permissions.User)
		}
		if c.Permissions.Group != "" {
			perm += fmt.Sprintf("group = %q\n", c.Permissions.Group)
		}
		if c.Permissions.FileMode != "" {
			perm += fmt.Sprintf("file_mode = %q\n", c.Permissions.FileMode)
		}
		if c.Permissions.DirMode != "" {
			perm += fmt.Sprintf("dir_mode = %q\n", c.Permissions.DirMode)
		}
		base += perm
	}

	return base
}

func formatStringSlice(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
