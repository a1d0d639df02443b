// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package corehttp

import (
	"errors"

	"github.com/gogama/corehttp/pipeline"
	"github.com/gogama/corehttp/policy"
	"github.com/gogama/corehttp/transport"
)

// ErrNoRetryPolicy is returned when per-retry policies are given along
// with an explicit policy list that holds no policy.Retrier, leaving
// nowhere to put them.
var ErrNoRetryPolicy = errors.New("corehttp: per-retry policies need a retry policy in the policy list")

func buildPipeline(cfg *Configuration, opts *ClientOptions) (*pipeline.Pipeline, error) {
	var policies []policy.Policy
	if opts.Policies == nil {
		policies = defaultPolicies(cfg, opts.PerCallPolicies, opts.PerRetryPolicies)
	} else {
		var err error
		policies, err = explicitPolicies(opts.Policies, opts.PerCallPolicies, opts.PerRetryPolicies)
		if err != nil {
			return nil, err
		}
	}

	t := opts.Transport
	if t == nil {
		t = transport.NewHTTPTransport(cfg.Transport)
	}
	return pipeline.New(t, policies...), nil
}

// defaultPolicies lays out the default set, earliest first. Retry wraps
// redirect handling and authentication so that every attempt is
// redirected and authenticated afresh; the logging stages come last so
// they see each attempt's final outcome.
func defaultPolicies(cfg *Configuration, perCall, perRetry []policy.Policy) []policy.Policy {
	policies := []policy.Policy{
		&policy.RequestIDPolicy{},
		cfg.HeadersPolicy,
		cfg.UserAgentPolicy,
		cfg.ProxyPolicy,
		&policy.ContentDecodePolicy{},
	}
	policies = append(policies, perCall...)
	policies = append(policies,
		cfg.RedirectPolicy,
		cfg.RetryPolicy,
		cfg.AuthenticationPolicy,
		cfg.CustomHookPolicy,
	)
	policies = append(policies, perRetry...)

	httpLogging := cfg.HTTPLoggingPolicy
	if httpLogging == nil {
		httpLogging = policy.NewHTTPLoggingPolicy(cfg.Logger)
	}
	policies = append(policies,
		cfg.LoggingPolicy,
		&policy.DistributedTracingPolicy{Logger: cfg.Logger},
		httpLogging,
	)
	return policy.List(policies...)
}

// explicitPolicies puts perCall in front of policies and perRetry right
// after the last retrier in policies.
func explicitPolicies(policies, perCall, perRetry []policy.Policy) ([]policy.Policy, error) {
	list := make([]policy.Policy, 0, len(perCall)+len(policies)+len(perRetry))
	list = append(list, perCall...)
	list = append(list, policies...)
	if len(perRetry) == 0 {
		return policy.List(list...), nil
	}

	retryIndex := -1
	for i, p := range list {
		if _, ok := p.(policy.Retrier); ok {
			retryIndex = i
		}
	}
	if retryIndex < 0 {
		return nil, ErrNoRetryPolicy
	}

	spliced := make([]policy.Policy, 0, len(list)+len(perRetry))
	spliced = append(spliced, list[:retryIndex+1]...)
	spliced = append(spliced, perRetry...)
	spliced = append(spliced, list[retryIndex+1:]...)
	return policy.List(spliced...), nil
}
