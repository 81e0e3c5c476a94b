// Package logging configures the process-wide zerolog logger and adapts
// it to the small Logger interface the rag pipeline depends on, so the
// pipeline itself never imports zerolog directly.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Init configures the global zerolog logger. logPath, when non-empty,
// sends output to that file instead of stdout so it does not collide
// with a caller's own stdout usage (a CLI piping embeddings to stdout,
// for instance).
func Init(logPath, level string) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var w = os.Stdout
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w = f
	}

	lvl := parseLevel(level)
	zerolog.SetGlobalLevel(lvl)
	l := zerolog.New(w).With().Timestamp().Logger()
	globalLogger = &l
	return nil
}

var globalLogger = func() *zerolog.Logger {
	l := zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	return &l
}()

func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Logger is the minimal structured-logging surface the rag pipeline
// consumes; a ZerologAdapter is the production implementation and the
// service package's built-in no-op logger (or a test double) can stand
// in for it.
type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	Debug(msg string, fields map[string]any)
}

// ZerologAdapter wraps the global zerolog.Logger to satisfy Logger.
type ZerologAdapter struct{}

// NewZerologAdapter returns a Logger backed by the globally configured
// zerolog logger. Call Init beforehand to point it at a file and set
// its level; otherwise it logs to stdout at info level.
func NewZerologAdapter() ZerologAdapter { return ZerologAdapter{} }

func (ZerologAdapter) Info(msg string, fields map[string]any) {
	withFields(globalLogger.Info(), fields).Msg(msg)
}

func (ZerologAdapter) Error(msg string, fields map[string]any) {
	withFields(globalLogger.Error(), fields).Msg(msg)
}

func (ZerologAdapter) Debug(msg string, fields map[string]any) {
	withFields(globalLogger.Debug(), fields).Msg(msg)
}

func withFields(e *zerolog.Event, fields map[string]any) *zerolog.Event {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	return e
}
