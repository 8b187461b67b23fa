// Package rtlog wraps logiface, backed by stumpy, for internal runtime
// diagnostics: GC cycles, shape materialisation, inline-cache hit/miss
// counters. It must never be used for JS-observable console.* output --
// that is a distinct sink owned by pkg/runtime (console runs through the
// script-visible world; rtlog runs through the host's).
//
// Diagnostics are gated by a package-level verbosity switch (Enabled) rather
// than always-on logging, and are routed through a structured logger instead
// of fmt.Printf so they can be consumed as newline-delimited JSON.
package rtlog

import (
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is a thin alias so callers don't need to spell out the generic
// instantiation everywhere.
type Logger = logiface.Logger[*stumpy.Event]

// Enabled gates whether diagnostics are emitted at all. Overridden by the
// JSCORE_RTLOG environment variable.
var Enabled = getEnvBool("JSCORE_RTLOG", false)

// New constructs the default diagnostics logger, writing newline-delimited
// JSON to stderr via stumpy, the reference Event implementation for
// logiface. When disabled, New still returns a usable Logger whose level is
// Informational, so the Debug and Trace builders short-circuit to nil.
func New() *Logger {
	level := logiface.LevelInformational
	if Enabled {
		level = logiface.LevelTrace
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(os.Stderr)),
		stumpy.L.WithLevel(level),
	)
}

func getEnvBool(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}
