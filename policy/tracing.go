// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gogama/corehttp/rest"
	"github.com/google/uuid"
)

// DistributedTracingPolicy opens a span for every attempt. It writes a
// W3C traceparent header naming the span and logs the span's start and
// end at Debug level.
//
// The trace id is taken from an existing traceparent header when the
// request has a valid one, so all attempts of a request, and requests
// the caller already traced, share a trace.
type DistributedTracingPolicy struct {
	Logger  SLogger
	TimeNow func() time.Time
}

type spanKey struct{}

// SpanIDOf returns the id of the most recent span opened for req by a
// DistributedTracingPolicy, or "".
func SpanIDOf(req *rest.Request) string {
	s, _ := req.Value(spanKey{}).(string)
	return s
}

// Do implements Policy.
func (p *DistributedTracingPolicy) Do(req *rest.Request, next Next) (*Envelope, error) {
	logger := loggerOrDefault(p.Logger)
	now := timeNowOrDefault(p.TimeNow)

	spanID := NewSpanID()
	traceID, ok := parseTraceParent(req.Header.Get("traceparent"))
	if !ok {
		traceID = hexID(uuid.New())
	}
	req.Header.Set("traceparent", "00-"+traceID+"-"+parentID(spanID)+"-01")
	req.SetValue(spanKey{}, spanID)

	t0 := now()
	logger.Debug(
		"spanStart",
		slog.String("spanID", spanID),
		slog.String("traceID", traceID),
		slog.String("method", req.Method()),
		slog.String("url", RedactURL(req.URL())),
		slog.Time("t", t0),
	)
	env, err := next(req)
	t := now()
	status := 0
	if env != nil && env.Response != nil {
		status = env.Response.StatusCode
	}
	logger.Debug(
		"spanDone",
		slog.String("spanID", spanID),
		slog.String("traceID", traceID),
		slog.Int("status", status),
		slog.Any("err", err),
		slog.String("errClass", classify(err)),
		slog.Duration("duration", t.Sub(t0)),
		slog.Time("t0", t0),
		slog.Time("t", t),
	)
	return env, err
}

func hexID(u uuid.UUID) string {
	return strings.ReplaceAll(u.String(), "-", "")
}

// parentID derives the 8 byte traceparent parent-id from the random
// tail of a UUIDv7 span id.
func parentID(spanID string) string {
	h := strings.ReplaceAll(spanID, "-", "")
	return h[len(h)-16:]
}

func parseTraceParent(v string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(v), "-")
	if len(parts) != 4 || len(parts[1]) != 32 || !isLowerHex(parts[1]) {
		return "", false
	}
	if strings.Trim(parts[1], "0") == "" {
		return "", false
	}
	return parts[1], true
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
