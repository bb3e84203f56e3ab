package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// can be swapped out with SetLogger so tests can capture or mute output.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. A nil argument installs a no-op
// logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
