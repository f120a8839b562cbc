// Package monitoring holds the package-level diagnostic hooks shared by the
// field adapter, the store and the CLI.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Warnf reports non-fatal runtime conditions, such as a quantity that arrives
// from a foreign unit registry and has to be normalised before it is stored.
var Warnf func(format string, v ...interface{}) = func(format string, v ...interface{}) {
	log.Printf("WARNING: "+format, v...)
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetWarner replaces the warning hook and returns the previous one so callers
// can restore it. Passing nil mutes warnings.
func SetWarner(f func(format string, v ...interface{})) (previous func(format string, v ...interface{})) {
	previous = Warnf
	if f == nil {
		Warnf = func(string, ...interface{}) {}
		return previous
	}
	Warnf = f
	return previous
}
