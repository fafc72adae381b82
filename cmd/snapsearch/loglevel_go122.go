//go:build go1.22

package main

import "log/slog"

// setLogLoggerLevel sets the level used by the bridge from the legacy
// log package into slog. slog.SetLogLoggerLevel was added in Go 1.22.
func setLogLoggerLevel(level slog.Level) {
	slog.SetLogLoggerLevel(level)
}
