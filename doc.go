// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package corehttp provides an HTTP client built from an extensible
pipeline of policies in front of a pluggable transport.

Create a Client to begin making requests.

	client, err := corehttp.NewClient("https://www.example.com", nil)
	...
	resp, err := client.Get("/widgets")
	...
	resp, err := client.PostJSON("/widgets", map[string]int{"eggs": 2})
	...
	resp, err := client.PostForm("/form",
		url.Values{"key": {"Value"}, "id": {"123"}})

For full control over the request, build it with package rest and send
it with SendRequest:

	req, err := rest.NewRequest("PUT", client.FormatURL("/widgets/1"), &rest.RequestOptions{
		Header: rest.NewHeader("If-Match", etag),
		JSON:   widget,
	})
	...
	resp, err := client.SendRequest(req, false)
	if err == nil {
		err = resp.RaiseForStatus()
	}

Unless stream is true, SendRequest reads the response body and closes
the response before returning it. Pass true to stream a large body, and
close the response when done:

	resp, err := client.SendRequest(req, true)
	...
	defer resp.Close()
	body, err := resp.Stream()

By default a client runs every request through the following policies,
earliest first: request id, headers, user agent, proxy, content
decoding, redirect, retry, authentication, custom hook, logging,
distributed tracing and HTTP logging. Policies after the retry stage
run once per attempt. Change the policies in a Configuration, or add
policies of your own with ClientOptions:

	cfg := corehttp.NewConfiguration(slog.Default())
	cfg.AuthenticationPolicy = policy.NewBearerTokenPolicy(tokens, "scope/.default")
	cfg.RetryPolicy = retry.NewPolicy(retry.Times(5).And(retry.TransientErr), retry.DefaultWaiter)
	client, err := corehttp.NewClient(baseURL, &corehttp.ClientOptions{
		Config:           cfg,
		PerRetryPolicies: []policy.Policy{collector.Policy()},
	})

To replace the default set entirely, give an explicit list. Per-call
policies are put in front of it, and per-retry policies right after
its retry policy:

	client, err := corehttp.NewClient(baseURL, &corehttp.ClientOptions{
		Policies:         []policy.Policy{retry.DefaultPolicy},
		PerRetryPolicies: []policy.Policy{myPolicy},
	})

For control over individual attempt timeouts, configure the transport
using package timeout:

	cfg.Transport = &transport.Config{
		TimeoutPolicy: timeout.Fixed(10 * time.Second),
	}

Package corehttp also provides basic interfaces for each method of the
client (Sender, Getter, Header, Poster, JSONPoster, and FormPoster); a
combined interface that composes all the basic methods (Executor); and
utility functions for working with a Sender (Inflate, Get, Head, Post,
PostJSON, and PostForm).
*/
package corehttp
