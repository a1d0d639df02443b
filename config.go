// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package corehttp

import (
	"github.com/gogama/corehttp/policy"
	"github.com/gogama/corehttp/retry"
	"github.com/gogama/corehttp/transport"
)

// A Configuration holds the substitutable policies a Client builds its
// default pipeline from. Any policy slot may be nil, in which case the
// stage is left out, except HTTPLoggingPolicy which falls back to a
// default HTTP logging policy.
//
// Slots are typed policy.Policy, so assign nil rather than a typed nil
// pointer to leave a stage out.
type Configuration struct {
	// Logger is handed to the policies the builder creates itself:
	// request logging, tracing and the default HTTP logging. If nil,
	// logs are discarded.
	Logger policy.SLogger

	HeadersPolicy        policy.Policy
	UserAgentPolicy      policy.Policy
	ProxyPolicy          policy.Policy
	RedirectPolicy       policy.Policy
	RetryPolicy          policy.Policy
	AuthenticationPolicy policy.Policy
	CustomHookPolicy     policy.Policy
	LoggingPolicy        policy.Policy
	HTTPLoggingPolicy    policy.Policy

	// Transport configures the default transport, built when the client
	// is not given one. Nil means the transport defaults.
	Transport *transport.Config
}

// NewConfiguration returns a Configuration holding the default
// policies. The logging policies log to logger, which may be nil.
//
// There is no default authentication policy. Set AuthenticationPolicy
// to a policy.BearerTokenPolicy to authenticate requests.
func NewConfiguration(logger policy.SLogger) *Configuration {
	cfg := &Configuration{
		Logger:           logger,
		HeadersPolicy:    policy.NewHeadersPolicy(),
		UserAgentPolicy:  &policy.UserAgentPolicy{},
		ProxyPolicy:      &policy.ProxyPolicy{},
		RedirectPolicy:   &policy.RedirectPolicy{Logger: logger},
		CustomHookPolicy: &policy.CustomHookPolicy{},
		LoggingPolicy:    &policy.LoggingPolicy{Logger: logger},
	}
	rp := retry.NewPolicy(retry.DefaultDecider, retry.DefaultWaiter)
	rp.Logger = logger
	cfg.RetryPolicy = rp
	return cfg
}
