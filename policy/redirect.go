// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/gogama/corehttp/rest"
)

// DefaultMaxRedirects is the number of redirects RedirectPolicy follows
// when MaxRedirects is zero.
const DefaultMaxRedirects = 30

// ErrTooManyRedirects is wrapped in the error RedirectPolicy returns when
// a request is redirected more times than allowed.
var ErrTooManyRedirects = errors.New("corehttp/policy: too many redirects")

// RedirectPolicy follows redirect responses.
//
// Statuses 300, 307 and 308 are followed with the same method and body,
// provided the body can be sent again. 301 and 302 are followed only
// for GET and HEAD requests. 303 is followed with a GET, or a HEAD for
// a HEAD request, and no body. The Authorization header is dropped
// when a redirect leaves the original host.
//
// Every response that is redirected away from is closed.
type RedirectPolicy struct {
	// MaxRedirects is the maximum number of redirects to follow for one
	// request. Zero means DefaultMaxRedirects; a negative value turns
	// redirect following off.
	MaxRedirects int
	// Logger receives a Debug record per redirect followed.
	Logger SLogger
}

// Do implements Policy.
func (p *RedirectPolicy) Do(req *rest.Request, next Next) (*Envelope, error) {
	env, err := next(req)
	if err != nil || p.MaxRedirects < 0 {
		return env, err
	}
	max := p.MaxRedirects
	if max == 0 {
		max = DefaultMaxRedirects
	}
	logger := loggerOrDefault(p.Logger)
	origin := hostOf(req.URL())
	for n := 0; ; n++ {
		target, err := redirectTarget(env)
		if err != nil {
			_ = env.Response.Close()
			return nil, err
		}
		if target == nil {
			return env, nil
		}
		if n >= max {
			_ = env.Response.Close()
			return nil, fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, max)
		}
		_ = env.Response.Close()
		logger.Debug(
			"redirect",
			slog.Int("status", env.Response.StatusCode),
			slog.String("from", RedactURL(env.Request.URL())),
			slog.String("to", RedactURL(target.URL())),
			slog.String("method", target.Method()),
		)
		if hostOf(target.URL()) != origin {
			target.Header.Del("Authorization")
		}
		if env, err = next(target); err != nil {
			return nil, err
		}
	}
}

// redirectTarget returns the request to send next, or nil if the
// response in env should not be followed.
func redirectTarget(env *Envelope) (*rest.Request, error) {
	req, resp := env.Request, env.Response
	method := req.Method()
	keepBody := true
	switch resp.StatusCode {
	case 300, 307, 308:
		if req.Kind() != rest.NoBody && !req.Rewindable() {
			return nil, nil
		}
	case 301, 302:
		if method != "GET" && method != "HEAD" {
			return nil, nil
		}
	case 303:
		if method != "HEAD" {
			method = "GET"
		}
		keepBody = false
	default:
		return nil, nil
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return nil, nil
	}
	base, err := url.Parse(req.URL())
	if err != nil {
		return nil, err
	}
	u, err := base.Parse(loc)
	if err != nil {
		return nil, fmt.Errorf("corehttp/policy: invalid redirect Location %q: %w", loc, err)
	}
	return req.Redirect(method, u.String(), keepBody), nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
