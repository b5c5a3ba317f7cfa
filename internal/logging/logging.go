// Package logging builds the process logger: a console writer on stdout and,
// when a log directory is configured, JSON lines in a rotated file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/enimaloc/distoornament/internal/config"
)

const fileName = "distoornament.log"

// Logger is the configured logger plus the rotated file behind it, if any.
type Logger struct {
	zerolog.Logger
	file *lumberjack.Logger
}

// ParseLevel maps a level name to a zerolog level. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// New builds the logger for cfg writing the console output to stdout.
func New(cfg config.Log) (*Logger, error) {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg config.Log, stdout io.Writer) (*Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var w io.Writer = zerolog.ConsoleWriter{
		Out:        stdout,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.NoColor,
	}

	var file *lumberjack.Logger
	if dir := strings.TrimSpace(cfg.Dir); dir != "" {
		if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
			return nil, fmt.Errorf("invalid log config: size=%d backups=%d age_days=%d", cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		file = &lumberjack.Logger{
			Filename:   filepath.Join(dir, fileName),
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		w = zerolog.MultiLevelWriter(w, file)
	}

	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &Logger{Logger: logger, file: file}, nil
}

// Path returns the rotated log file, empty when logging to stdout only.
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Filename
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
