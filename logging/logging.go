// Package logging provides the small leveled-logging interface used by
// the CLI around the gamecov core. The core
// packages themselves (hash, bktree, unionfind, gamecov, greedy) never
// log: they are pure, in-memory, and total over well-formed input, so
// there is nothing useful to log from inside them.
package logging

import "log"

// Logger is the leveled-logging capability the ambient code depends on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NullLogger discards everything. Useful as a zero-configuration
// default for callers that don't care about diagnostics.
type NullLogger struct{}

func (NullLogger) Debugf(format string, args ...interface{}) {}
func (NullLogger) Infof(format string, args ...interface{})  {}
func (NullLogger) Errorf(format string, args ...interface{}) {}

// StdLogger writes to the standard library's log package, prefixing
// each line with its level.
type StdLogger struct{}

func (StdLogger) Debugf(format string, args ...interface{}) {
	log.Printf("[DEBUG] "+format, args...)
}

func (StdLogger) Infof(format string, args ...interface{}) {
	log.Printf("[INFO] "+format, args...)
}

func (StdLogger) Errorf(format string, args ...interface{}) {
	log.Printf("[ERROR] "+format, args...)
}
