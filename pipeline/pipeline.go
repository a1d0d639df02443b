// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"io"

	"github.com/gogama/corehttp/policy"
	"github.com/gogama/corehttp/rest"
	"github.com/gogama/corehttp/transport"
	"github.com/hashicorp/go-multierror"
)

// A Pipeline sends requests through an ordered list of policies and
// finally a transport.
//
// A Pipeline is immutable once constructed and is safe for concurrent
// use by multiple goroutines, provided its policies and transport are.
type Pipeline struct {
	transport transport.Transport
	policies  []policy.Policy
	head      policy.Next
}

// New constructs a Pipeline running policies, earliest first, in front
// of t. Nil policies are skipped.
func New(t transport.Transport, policies ...policy.Policy) *Pipeline {
	if t == nil {
		panic("corehttp/pipeline: nil transport")
	}
	p := &Pipeline{
		transport: t,
		policies:  policy.List(policies...),
	}
	p.head = p.send
	for i := len(p.policies) - 1; i >= 0; i-- {
		p.head = link(p.policies[i], p.head)
	}
	return p
}

func link(pol policy.Policy, next policy.Next) policy.Next {
	return func(req *rest.Request) (*policy.Envelope, error) {
		return pol.Do(req, next)
	}
}

func (p *Pipeline) send(req *rest.Request) (*policy.Envelope, error) {
	raw, err := p.transport.Send(req)
	if err != nil {
		return nil, err
	}
	return &policy.Envelope{
		Request:  req,
		Response: rest.NewResponse(req, raw),
	}, nil
}

// Run sends req through the pipeline. Each policy pre-processes the
// request in order, the transport sends it, and each policy
// post-processes the outcome in reverse order.
//
// On success the returned envelope holds an unread response which the
// caller owns and must close.
func (p *Pipeline) Run(req *rest.Request) (*policy.Envelope, error) {
	if req == nil {
		panic("corehttp/pipeline: nil request")
	}
	return p.head(req)
}

// Policies returns a copy of the pipeline's policies, earliest first.
func (p *Pipeline) Policies() []policy.Policy {
	return append([]policy.Policy(nil), p.policies...)
}

// Transport returns the pipeline's transport.
func (p *Pipeline) Transport() transport.Transport {
	return p.transport
}

// Open opens the transport.
func (p *Pipeline) Open() error {
	return p.transport.Open()
}

// Close closes the transport and every policy which implements
// io.Closer. All are closed even if some fail; the failures are
// combined into one error.
func (p *Pipeline) Close() error {
	var result *multierror.Error
	if err := p.transport.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	for _, pol := range p.policies {
		if c, ok := pol.(io.Closer); ok {
			if err := c.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result.ErrorOrNil()
}
