// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"github.com/gogama/corehttp/rest"
)

// An Envelope carries the outcome of sending a request through a
// pipeline: the request actually sent by the transport, which policies
// such as the redirect policy may have replaced, and the response.
type Envelope struct {
	Request  *rest.Request
	Response *rest.Response
}

// Next sends a request through the rest of the pipeline: the policies
// after the current one, and finally the transport.
type Next func(req *rest.Request) (*Envelope, error)

// A Policy is one stage of a pipeline. Do receives the request on its
// way out, calls next zero or more times, and returns the envelope on
// its way back, so pre-processing runs from the first policy to the
// last and post-processing in reverse.
//
// A Policy which calls next must return either the envelope next
// returned, possibly with its response replaced, or an error. If it
// discards a response it must close it. A Policy which returns an error
// without calling next short-circuits the rest of the pipeline.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Do(req *rest.Request, next Next) (*Envelope, error)
}

// The Func type is an adapter to allow the use of ordinary functions as
// policies.
type Func func(req *rest.Request, next Next) (*Envelope, error)

// Do calls f(req, next).
func (f Func) Do(req *rest.Request, next Next) (*Envelope, error) {
	return f(req, next)
}

// A Retrier is a policy which may send its request more than once.
// Per-retry policies are placed immediately after the last Retrier in a
// chain so they run once per attempt.
type Retrier interface {
	Policy
	// RetryStage marks the policy as a retry stage. It does nothing.
	RetryStage()
}

// List returns its arguments as a policy list, dropping nil policies.
// The result is never nil, so List() is an explicitly empty list.
func List(policies ...Policy) []Policy {
	list := make([]Policy, 0, len(policies))
	for _, p := range policies {
		if p != nil {
			list = append(list, p)
		}
	}
	return list
}

// Hooks holds optional callbacks run around the rest of the pipeline.
// Either may be nil.
type Hooks struct {
	// OnRequest runs before the request is passed on. An error aborts
	// the request.
	OnRequest func(req *rest.Request) error
	// OnResponse runs after a response comes back. An error closes the
	// response and is returned in its place.
	OnResponse func(req *rest.Request, resp *rest.Response) error
}

// FromHooks adapts h into a Policy.
func FromHooks(h Hooks) Policy {
	return hookPolicy(h)
}

type hookPolicy Hooks

func (h hookPolicy) Do(req *rest.Request, next Next) (*Envelope, error) {
	if h.OnRequest != nil {
		if err := h.OnRequest(req); err != nil {
			return nil, err
		}
	}
	env, err := next(req)
	if err != nil {
		return nil, err
	}
	if h.OnResponse != nil {
		if err = h.OnResponse(env.Request, env.Response); err != nil {
			_ = env.Response.Close()
			return nil, err
		}
	}
	return env, nil
}
