//go:build !go1.22

package main

import "log/slog"

// setLogLoggerLevel is a no-op before Go 1.22, where
// slog.SetLogLoggerLevel does not exist; the log-to-slog bridge stays
// at its fixed default level (Info).
func setLogLoggerLevel(slog.Level) {}
