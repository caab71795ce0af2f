// Package logging configures the process-wide slog logger for both binaries.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Options selects the handler and threshold.
type Options struct {
	Level slog.Level
	// Console switches from JSON records to colored tint output.
	Console   bool
	AddSource bool
}

// ParseLevel reads a LOG_LEVEL value. Blank means info.
func ParseLevel(value string) (slog.Level, error) {
	level := slog.LevelInfo
	value = strings.TrimSpace(value)
	if value == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", value, err)
	}
	return level, nil
}

// ForEnvironment picks console output for development or debug logging and
// JSON everywhere else. Debug logging also records the call site.
func ForEnvironment(environment string, level slog.Level) Options {
	debugging := level <= slog.LevelDebug
	return Options{
		Level:     level,
		Console:   debugging || strings.EqualFold(environment, "development"),
		AddSource: debugging,
	}
}

func NewHandler(w io.Writer, opts Options) slog.Handler {
	if !opts.Console {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: opts.AddSource,
		})
	}

	prefix := modulePrefix()
	return tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.TimeOnly,
		AddSource:  opts.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if source, ok := a.Value.Any().(*slog.Source); ok && a.Key == slog.SourceKey {
				source.File = trimModulePath(source.File, prefix)
			}
			if err, ok := a.Value.Any().(error); ok {
				aErr := tint.Err(err)
				aErr.Key = a.Key
				return aErr
			}
			return a
		},
	})
}

// Setup installs a logger built from opts as the slog default.
func Setup(w io.Writer, opts Options) *slog.Logger {
	logger := slog.New(NewHandler(w, opts))
	slog.SetDefault(logger)
	return logger
}

// modulePrefix is "/<last module path element>/", e.g. "/chsn-merch/".
func modulePrefix() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Path == "" {
		return "/chsn-merch/"
	}
	parts := strings.Split(info.Main.Path, "/")
	return "/" + parts[len(parts)-1] + "/"
}

// trimModulePath shortens an absolute source path to its module-relative part.
func trimModulePath(path, prefix string) string {
	if _, rest, ok := strings.Cut(path, prefix); ok {
		return rest
	}
	if idx := strings.LastIndex(path, "/src/"); idx != -1 {
		return path[idx+len("/src/"):]
	}
	return path
}
