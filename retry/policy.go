// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/bassosimone/errclass"
	"github.com/gogama/corehttp/policy"
	"github.com/gogama/corehttp/rest"
)

// A Policy is the pipeline stage that retries failed attempts. After
// every attempt it asks its Decider whether a retry should be done and,
// if so, asks its Waiter how long to wait before the next attempt.
//
// Policy implements policy.Retrier, so policies placed after it in a
// pipeline run once per attempt, while policies placed before it run
// once per request.
//
// A Policy is safe for concurrent use by multiple goroutines provided
// its Decider and Waiter are.
type Policy struct {
	// Logger receives a Debug record before each retry. If nil, nothing
	// is logged.
	Logger policy.SLogger

	decider Decider
	waiter  Waiter
	timeNow func() time.Time
}

// DefaultPolicy is a general-purpose retry policy suitable for common
// use cases. It is a composition of DefaultDecider for retry decisions
// and DefaultWaiter for wait time calculations.
var DefaultPolicy = NewPolicy(DefaultDecider, DefaultWaiter)

// Never is a policy that never retries. It is useful to keep a retry
// stage in a pipeline, so that per-retry policies have a place to go,
// without retrying anything.
var Never = NewPolicy(Times(0), NewFixedWaiter(0))

// NewPolicy composes a Decider and a Waiter into a retry Policy.
func NewPolicy(d Decider, w Waiter) *Policy {
	if d == nil {
		panic("corehttp/retry: nil decider")
	}
	if w == nil {
		panic("corehttp/retry: nil waiter")
	}
	return &Policy{decider: d, waiter: w}
}

// Decide returns true if a retry should be done after attempt a.
func (p *Policy) Decide(a *Attempt) bool {
	return p.decider.Decide(a)
}

// Wait returns how long to wait before retrying attempt a.
func (p *Policy) Wait(a *Attempt) time.Duration {
	return p.waiter.Wait(a)
}

// RetryStage marks Policy as a policy.Retrier.
func (p *Policy) RetryStage() {}

var _ policy.Retrier = (*Policy)(nil)

// Do sends req through next until an attempt is not retried, and
// returns the outcome of the last attempt. Responses of discarded
// attempts are closed.
//
// If the request context ends while waiting to retry, Do returns the
// context error wrapped in a *url.Error.
func (p *Policy) Do(req *rest.Request, next policy.Next) (*policy.Envelope, error) {
	now := p.timeNow
	if now == nil {
		now = time.Now
	}
	ctx := req.Context()
	a := Attempt{Request: req, Start: now()}
	for {
		env, err := next(req)
		a.End = now()
		a.Request, a.Response, a.Err = req, nil, err
		if env != nil {
			if env.Request != nil {
				a.Request = env.Request
			}
			a.Response = env.Response
		}

		if ctx.Err() != nil || !p.decider.Decide(&a) {
			return env, err
		}

		wait := p.waiter.Wait(&a)
		if a.Response != nil {
			_ = a.Response.Close()
		}
		p.log(&a, wait)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, urlErrorWrap(req, ctx.Err())
		}
		a.Index++
	}
}

func (p *Policy) log(a *Attempt, wait time.Duration) {
	if p.Logger == nil {
		return
	}
	errClass := ""
	if a.Err != nil {
		errClass = errclass.New(a.Err)
	}
	p.Logger.Debug(
		"retry",
		slog.Int("attempt", a.Index),
		slog.Int("status", a.StatusCode()),
		slog.String("errClass", errClass),
		slog.Duration("wait", wait),
		slog.String("method", a.Request.Method()),
		slog.String("url", policy.RedactURL(a.Request.URL())),
	)
}

func urlErrorWrap(req *rest.Request, err error) error {
	method := req.Method()
	return &url.Error{
		Op:  method[:1] + strings.ToLower(method[1:]),
		URL: req.URL(),
		Err: err,
	}
}
