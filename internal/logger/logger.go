// Package logger provides a thin wrapper around logrus for structured logging.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global logger instance.
var Logger = newDefault()

func newDefault() *log.Logger {
	l := log.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	l.SetLevel(log.InfoLevel)
	return l
}

// Options controls where and how much the global logger writes.
type Options struct {
	Level string
	File  string
	// Stderr also mirrors output to stderr when a file is set.
	Stderr bool
}

// Setup configures the global logger. When File is set, output goes to a
// rotating log file.
func Setup(opts Options) error {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	Logger.SetLevel(level)

	if opts.File == "" {
		Logger.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	var out io.Writer = rotator
	if opts.Stderr {
		out = io.MultiWriter(os.Stderr, rotator)
	}
	Logger.SetOutput(out)
	return nil
}

// fields turns alternating key/value arguments into logrus fields.
// A trailing key without a value is recorded under "!BADKEY".
func fields(args []any) log.Fields {
	if len(args) == 0 {
		return nil
	}
	f := make(log.Fields, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			f["!BADKEY"] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if err, isErr := args[i+1].(error); isErr {
			f[key] = err.Error()
			continue
		}
		f[key] = args[i+1]
	}
	return f
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.WithFields(fields(args)).Error(msg)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.WithFields(fields(args)).Info(msg)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.WithFields(fields(args)).Warn(msg)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.WithFields(fields(args)).Debug(msg)
}
