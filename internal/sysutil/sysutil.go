// Package sysutil owns process-wide logging setup. It is the only place that
// mutates zerolog globals; every other package logs through whatever was
// configured here at boot.
package sysutil

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetLogLevel sets the global zerolog level from a config string such as
// "debug" or "WARN". Any level name zerolog knows is accepted, plus the
// common "warning" spelling. Unrecognized values and the empty string fall
// back to info, so a typo can never silence the log.
func SetLogLevel(lvl string) {
	name := strings.ToLower(strings.TrimSpace(lvl))
	if name == "warning" {
		name = "warn"
	}
	parsed, err := zerolog.ParseLevel(name)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// SetupLogging applies the process logging configuration in one call: the
// global level, RFC 3339 timestamps, and optionally a human-readable console
// writer on stderr. Production deployments keep pretty false and ship the
// default JSON lines.
func SetupLogging(level string, pretty bool) {
	SetLogLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
