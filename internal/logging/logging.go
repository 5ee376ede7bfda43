// Package logging is jellytidy's leveled logger. Every line carries the
// component that wrote it and optional key=value fields:
//
//	2024-05-01T10:00:00Z [INFO] [planner] plan built | records=12 | moves=3
//
// Lines go to ~/.config/jellytidy/logs/jellytidy.log, rolled over by size,
// and to stderr when console output is on.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Nomadcxx/jellytidy/internal/paths"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError

	levelOff
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a [logging] level name to a Level. Unknown names are info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is one key=value pair of a log line.
type Field struct {
	Key   string
	Value any
}

// F builds a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// FileNone disables the log file.
const FileNone = "none"

// Config is the [logging] section as the logger consumes it.
type Config struct {
	Level      string
	File       string // empty for the default path, FileNone for no file
	MaxSizeMB  int
	MaxBackups int
	Console    bool
}

// DefaultConfig logs info and above to the default file, keeping five 10 MB
// backups.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  10,
		MaxBackups: 5,
	}
}

// Logger writes formatted lines to every configured output. A nil *Logger
// discards everything.
type Logger struct {
	mu    sync.Mutex
	level Level
	out   []io.Writer
	file  *rotatingFile
}

// NewWriter logs to w only.
func NewWriter(w io.Writer, level string) *Logger {
	return &Logger{level: ParseLevel(level), out: []io.Writer{w}}
}

// Nop returns a logger that drops every line.
func Nop() *Logger {
	return &Logger{level: levelOff}
}

// New builds a logger from cfg, creating the log directory when needed.
func New(cfg Config) (*Logger, error) {
	l := &Logger{level: ParseLevel(cfg.Level)}
	if cfg.Console {
		l.out = append(l.out, os.Stderr)
	}
	if cfg.File == FileNone {
		return l, nil
	}

	path, err := resolveFile(cfg.File)
	if err != nil {
		return nil, err
	}
	maxSize := int64(cfg.MaxSizeMB) << 20
	if maxSize <= 0 {
		maxSize = int64(DefaultConfig().MaxSizeMB) << 20
	}
	rf, err := openRotating(path, maxSize, cfg.MaxBackups)
	if err != nil {
		return nil, err
	}
	l.file = rf
	l.out = append(l.out, rf)
	return l, nil
}

func resolveFile(file string) (string, error) {
	switch {
	case file == "":
		p, err := paths.LogPath()
		if err != nil {
			return "", fmt.Errorf("unable to resolve log path: %w", err)
		}
		return p, nil
	case file == "~" || strings.HasPrefix(file, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to get home dir: %w", err)
		}
		return filepath.Join(home, file[1:]), nil
	default:
		return file, nil
	}
}

func (l *Logger) Debug(component, msg string, fields ...Field) {
	l.write(LevelDebug, component, msg, nil, fields)
}

func (l *Logger) Info(component, msg string, fields ...Field) {
	l.write(LevelInfo, component, msg, nil, fields)
}

func (l *Logger) Warn(component, msg string, fields ...Field) {
	l.write(LevelWarn, component, msg, nil, fields)
}

// Error logs msg with err as the first field.
func (l *Logger) Error(component, msg string, err error, fields ...Field) {
	l.write(LevelError, component, msg, err, fields)
}

func (l *Logger) write(level Level, component, msg string, err error, fields []Field) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level || len(l.out) == 0 {
		return
	}

	line := formatLine(time.Now(), level, component, msg, err, fields)
	for _, w := range l.out {
		if _, werr := io.WriteString(w, line); werr != nil && w != io.Writer(os.Stderr) {
			fmt.Fprintf(os.Stderr, "jellytidy: log write failed: %v\n", werr)
		}
	}
}

func formatLine(now time.Time, level Level, component, msg string, err error, fields []Field) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] [%s] %s", now.Format(time.RFC3339), level, component, msg)
	if err != nil {
		sb.WriteString(" | error=")
		sb.WriteString(err.Error())
	}
	for _, f := range fields {
		fmt.Fprintf(&sb, " | %s=%v", f.Key, f.Value)
	}
	sb.WriteByte('\n')
	return sb.String()
}

func (l *Logger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// FilePath is the log file, or "" when the logger has none.
func (l *Logger) FilePath() string {
	if l.file == nil {
		return ""
	}
	return l.file.path
}

// Close closes the log file. Lines logged afterwards only reach the console.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	kept := l.out[:0]
	for _, w := range l.out {
		if w != io.Writer(l.file) {
			kept = append(kept, w)
		}
	}
	l.out = kept
	return l.file.Close()
}
