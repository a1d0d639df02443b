// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gogama/corehttp/rest"
)

// Redacted replaces header and query parameter values which are not on
// an HTTPLoggingPolicy allowlist.
const Redacted = "REDACTED"

// DefaultAllowedHeaders lists the headers whose values HTTPLoggingPolicy
// logs by default.
var DefaultAllowedHeaders = []string{
	"Accept",
	"Accept-Encoding",
	"Cache-Control",
	"Connection",
	"Content-Encoding",
	"Content-Length",
	"Content-Type",
	"Date",
	"ETag",
	"Expires",
	"If-Match",
	"If-Modified-Since",
	"If-None-Match",
	"If-Unmodified-Since",
	"Last-Modified",
	"Location",
	"Pragma",
	"Retry-After",
	"Server",
	"Traceparent",
	"Transfer-Encoding",
	"User-Agent",
	"WWW-Authenticate",
	DefaultRequestIDHeader,
}

// HTTPLoggingPolicy logs each request sent and each response received
// at Info level, including headers. Values of headers and query
// parameters not on the allowlists are replaced with Redacted, so
// credentials never reach the log. The zero value allows nothing.
type HTTPLoggingPolicy struct {
	Logger  SLogger
	TimeNow func() time.Time

	allowedHeaders map[string]bool
	allowedParams  map[string]bool
}

// NewHTTPLoggingPolicy returns a policy logging to logger with
// DefaultAllowedHeaders and no allowed query parameters.
func NewHTTPLoggingPolicy(logger SLogger) *HTTPLoggingPolicy {
	p := &HTTPLoggingPolicy{Logger: logger}
	p.AllowHeaders(DefaultAllowedHeaders...)
	return p
}

// AllowHeaders adds header names to the allowlist. It must not be called
// once the policy is in use.
func (p *HTTPLoggingPolicy) AllowHeaders(names ...string) {
	if p.allowedHeaders == nil {
		p.allowedHeaders = make(map[string]bool)
	}
	for _, n := range names {
		p.allowedHeaders[strings.ToLower(n)] = true
	}
}

// AllowQueryParams adds query parameter names to the allowlist. It must
// not be called once the policy is in use.
func (p *HTTPLoggingPolicy) AllowQueryParams(names ...string) {
	if p.allowedParams == nil {
		p.allowedParams = make(map[string]bool)
	}
	for _, n := range names {
		p.allowedParams[n] = true
	}
}

// Do implements Policy.
func (p *HTTPLoggingPolicy) Do(req *rest.Request, next Next) (*Envelope, error) {
	logger := loggerOrDefault(p.Logger)
	now := timeNowOrDefault(p.TimeNow)
	t0 := now()
	logger.Info(
		"httpRequest",
		slog.String("method", req.Method()),
		slog.String("url", p.redactURL(req.URL())),
		slog.Any("headers", p.redactHeader(req.Header)),
		slog.Time("t", t0),
	)
	env, err := next(req)
	if err != nil {
		logger.Info(
			"httpRequestFailed",
			slog.Any("err", err),
			slog.String("errClass", classify(err)),
			slog.String("url", p.redactURL(req.URL())),
			slog.Time("t0", t0),
			slog.Time("t", now()),
		)
		return nil, err
	}
	t := now()
	logger.Info(
		"httpResponse",
		slog.Int("status", env.Response.StatusCode),
		slog.String("url", p.redactURL(env.Request.URL())),
		slog.Any("headers", p.redactHeader(env.Response.Header)),
		slog.Duration("duration", t.Sub(t0)),
		slog.Time("t0", t0),
		slog.Time("t", t),
	)
	return env, nil
}

func (p *HTTPLoggingPolicy) redactHeader(h *rest.Header) map[string]string {
	m := make(map[string]string, h.Len())
	h.Range(func(name, value string) bool {
		if !p.allowedHeaders[strings.ToLower(name)] {
			value = Redacted
		}
		m[name] = value
		return true
	})
	return m
}

func (p *HTTPLoggingPolicy) redactURL(raw string) string {
	return redactURL(raw, p.allowedParams)
}

// RedactURL returns raw with every query parameter value replaced by
// Redacted and any password in the user info masked. Policies use it to
// log URLs; a URL that does not parse is returned unchanged.
func RedactURL(raw string) string {
	return redactURL(raw, nil)
}

func redactURL(raw string, allowed map[string]bool) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.RawQuery != "" {
		q := u.Query()
		for k, vs := range q {
			if !allowed[k] {
				for i := range vs {
					vs[i] = Redacted
				}
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.Redacted()
}
