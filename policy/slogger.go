// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

// SLogger abstracts the [*slog.Logger] behavior.
//
// Policies log at two levels:
//   - Info for HTTP traffic (request sent, response received)
//   - Debug for per-request pipeline detail (spans, retries, redirects)
//
// The [*slog.Logger] type satisfies this interface.
type SLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// DefaultSLogger returns the default [SLogger], which discards all
// output. Use a [*slog.Logger] to see pipeline logs.
func DefaultSLogger() SLogger {
	return discardSLogger{}
}

type discardSLogger struct{}

var _ SLogger = discardSLogger{}

func (discardSLogger) Debug(msg string, args ...any) {}

func (discardSLogger) Info(msg string, args ...any) {}

func loggerOrDefault(l SLogger) SLogger {
	if l == nil {
		return DefaultSLogger()
	}
	return l
}
