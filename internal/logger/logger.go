// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/justsurfingit/lead-labeler/internal/config"
)

// Logger is the process-wide logger. It writes text to stdout until Init runs.
var Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init builds the logger from cfg.Log and installs it as the slog default.
func Init(cfg *config.Config) error {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stdout
	switch strings.ToLower(cfg.Log.Output) {
	case "file", "both":
		if err := os.MkdirAll(filepath.Dir(cfg.Log.FilePath), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(cfg.Log.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w = f
		if strings.EqualFold(cfg.Log.Output, "both") {
			w = io.MultiWriter(os.Stdout, f)
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.Log.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	Logger = slog.New(h)
	slog.SetDefault(Logger)
	return nil
}

func Debug(msg string, args ...any) { Logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { Logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger.Warn(msg, args...) }
func Error(msg string, args ...any) { Logger.Error(msg, args...) }
