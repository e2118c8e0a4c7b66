// Package log wraps zerolog to give every layer of the storage engine
// (delta, scratchpad, working set, JMT engine, storage manager) a
// structured, component-tagged logger.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance. Until Init is called it is a
// plain timestamped stderr logger, so a package that never calls Init
// still logs somewhere.
var Logger zerolog.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Level represents log level
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init initializes the global logger
func Init(cfg Config) {
	// Set log level
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	// Use JSON or console output
	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// WithComponent creates a child logger with component field
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithNamespace returns a child of base with a namespace field attached,
// so a component logger can be scoped to the namespace it is currently
// servicing (e.g. log.WithNamespace(log.WithComponent("cache"), "user")).
func WithNamespace(base zerolog.Logger, namespace string) zerolog.Logger {
	return base.With().Str("namespace", namespace).Logger()
}

// WithSlot returns a child of base with a slot (DA block height/version)
// field attached.
func WithSlot(base zerolog.Logger, slot uint64) zerolog.Logger {
	return base.With().Uint64("slot", slot).Logger()
}

// WithTx returns a child of base with a transaction index field
// attached.
func WithTx(base zerolog.Logger, txIndex int) zerolog.Logger {
	return base.With().Int("tx", txIndex).Logger()
}

// Helper functions for common logging patterns
func Info(msg string) {
	Logger.Info().Msg(msg)
}

func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

func Error(msg string) {
	Logger.Error().Msg(msg)
}

func Errorf(format string, err error) {
	Logger.Error().Err(err).Msg(format)
}

func Fatal(msg string) {
	Logger.Fatal().Msg(msg)
}
