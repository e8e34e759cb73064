// Package logger is the process-wide structured logger. Records go to
// <dir>/logs/daynote.log, rotated by size; --debug mirrors them to stderr
// and lowers the level. Before Init every call is dropped.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/daynote/internal/constants"
)

// Logger is nil until Init succeeds.
var Logger *log.Logger

type Config struct {
	Debug bool
	// Dir holds the logs directory, normally the store's directory.
	Dir string
}

// LogFile returns the active log path under dir.
func LogFile(dir string) string {
	return filepath.Join(dir, "logs", constants.AppName+".log")
}

func Init(cfg Config) error {
	path := LogFile(cfg.Dir)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	var out io.Writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    2, // MB
		MaxBackups: 3,
		MaxAge:     30,
	}
	level := log.WarnLevel
	if cfg.Debug {
		out = io.MultiWriter(os.Stderr, out)
		level = log.DebugLevel
	}

	Logger = log.NewWithOptions(out, log.Options{
		Level:           level,
		Prefix:          constants.AppName,
		ReportTimestamp: true,
		ReportCaller:    cfg.Debug,
		// Callers are reported at the package helpers, not here.
		CallerOffset: 1,
	})
	return nil
}

func logAt(level log.Level, msg string, keyvals []any) {
	if Logger == nil {
		return
	}
	Logger.Log(level, msg, keyvals...)
}

func Debug(msg string, keyvals ...any) { logAt(log.DebugLevel, msg, keyvals) }

func Warn(msg string, keyvals ...any) { logAt(log.WarnLevel, msg, keyvals) }

func Error(msg string, keyvals ...any) { logAt(log.ErrorLevel, msg, keyvals) }
