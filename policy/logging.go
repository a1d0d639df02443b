// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"log/slog"
	"time"

	"github.com/bassosimone/errclass"
	"github.com/gogama/corehttp/rest"
)

// LoggingPolicy writes a Debug summary of every attempt: the request
// line when it is sent, and the status or error when it completes.
type LoggingPolicy struct {
	Logger SLogger
	// TimeNow returns the current time. If nil, time.Now is used.
	TimeNow func() time.Time
}

// Do implements Policy.
func (p *LoggingPolicy) Do(req *rest.Request, next Next) (*Envelope, error) {
	logger := loggerOrDefault(p.Logger)
	now := timeNowOrDefault(p.TimeNow)
	t0 := now()
	logger.Debug(
		"requestStart",
		slog.String("method", req.Method()),
		slog.String("url", RedactURL(req.URL())),
		slog.Time("t", t0),
	)
	env, err := next(req)
	if err != nil {
		logger.Debug(
			"requestDone",
			slog.Any("err", err),
			slog.String("errClass", classify(err)),
			slog.String("method", req.Method()),
			slog.String("url", RedactURL(req.URL())),
			slog.Time("t0", t0),
			slog.Time("t", now()),
		)
		return nil, err
	}
	logger.Debug(
		"requestDone",
		slog.Int("status", env.Response.StatusCode),
		slog.String("method", env.Request.Method()),
		slog.String("url", RedactURL(env.Request.URL())),
		slog.Time("t0", t0),
		slog.Time("t", now()),
	)
	return env, nil
}

func timeNowOrDefault(f func() time.Time) func() time.Time {
	if f == nil {
		return time.Now
	}
	return f
}

func classify(err error) string {
	if err == nil {
		return ""
	}
	return errclass.New(err)
}
