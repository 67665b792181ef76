//go:build debug

package main

import "fmt"

// debugLog writes debug messages to the log file at V(2) when built with
// -tags debug
func debugLog(format string, args ...interface{}) {
	appLog.V(2).Info(fmt.Sprintf(format, args...), "debug", true)
}
