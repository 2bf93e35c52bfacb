// Package applog is a thin wrapper over the standard log package,
// shelling out to log.Printf/fmt.Fprintf(os.Stderr, ...) rather than
// pulling in an ecosystem logger. Grounded on
// original_source/src/log.c's LOG_ERROR/LOG_INFO level split.
package applog

import (
	"log"
	"os"
)

var (
	infoLog  = log.New(os.Stderr, "[info] ", log.LstdFlags)
	errorLog = log.New(os.Stderr, "[error] ", log.LstdFlags)
)

// Info logs a progress message (fuzzer summaries, abstract-interpreter
// diagnostics).
func Info(format string, args ...any) {
	infoLog.Printf(format, args...)
}

// Error logs a fatal or near-fatal diagnostic before the CLI exits
// non-zero.
func Error(format string, args ...any) {
	errorLog.Printf(format, args...)
}
