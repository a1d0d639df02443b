// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package corehttp

import (
	"net/url"
	"strings"
	"sync"

	"github.com/gogama/corehttp/pipeline"
	"github.com/gogama/corehttp/policy"
	"github.com/gogama/corehttp/rest"
	"github.com/gogama/corehttp/transport"
	"github.com/hashicorp/go-multierror"
)

// ClientOptions are the optional parts of a Client. The zero value
// builds the default pipeline over the default transport.
type ClientOptions struct {
	// Config supplies the default policies. If nil, NewConfiguration(nil)
	// is used.
	Config *Configuration

	// Pipeline, if not nil, is used as is. All the other options are
	// then ignored.
	Pipeline *pipeline.Pipeline

	// Policies replaces the default policy set. Nil means the default
	// set; a non-nil empty list means no policies at all.
	Policies []policy.Policy

	// PerCallPolicies run once per request. They go right after content
	// decoding in the default set, or in front of Policies.
	PerCallPolicies []policy.Policy

	// PerRetryPolicies run once per attempt. They go right after the
	// retry stage: after the custom hook in the default set, or after
	// the last policy.Retrier in Policies, in which case there must be
	// one.
	PerRetryPolicies []policy.Policy

	// Transport sends the requests. If nil, a transport.HTTPTransport is
	// built from Config.Transport.
	Transport transport.Transport
}

// A Client sends requests through a pipeline of policies and a
// transport.
//
// A Client is safe for concurrent use by multiple goroutines, provided
// its policies and transport are. It holds no per-request state.
//
// A Client owns its pipeline. Call Close to release the transport once
// the client is no longer needed.
type Client struct {
	baseURL  string
	config   *Configuration
	pipeline *pipeline.Pipeline

	lock   sync.Mutex
	closed bool
}

// NewClient returns a Client for the service at baseURL. Opts may be
// nil.
//
// NewClient fails with ErrNoRetryPolicy if opts gives per-retry policies
// and an explicit policy list without a retry policy.
func NewClient(baseURL string, opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = NewConfiguration(nil)
	}
	p := opts.Pipeline
	if p == nil {
		var err error
		if p, err = buildPipeline(cfg, opts); err != nil {
			return nil, err
		}
	}
	return &Client{
		baseURL:  baseURL,
		config:   cfg,
		pipeline: p,
	}, nil
}

// Pipeline returns the client's pipeline.
func (c *Client) Pipeline() *pipeline.Pipeline {
	return c.pipeline
}

// Config returns the configuration the client was built with.
func (c *Client) Config() *Configuration {
	return c.config
}

// FormatURL resolves a URL against the client's base URL. An absolute
// URL is returned unchanged. Otherwise its path is appended to the base
// URL path, and its query parameters are added to those of the base URL.
func (c *Client) FormatURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.IsAbs() && u.Host != "" {
		return rawURL
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return rawURL
	}
	if p := strings.TrimLeft(u.Path, "/"); p != "" {
		base.Path = strings.TrimRight(base.Path, "/") + "/" + p
		base.RawPath = ""
	}
	if u.RawQuery != "" {
		q := base.Query()
		for k, vs := range u.Query() {
			q[k] = vs
		}
		base.RawQuery = q.Encode()
	}
	return base.String()
}

// SendRequest runs req through the pipeline and returns the response.
//
// Unless stream is true the response body is read in full and the
// response closed before SendRequest returns, so the content accessors
// are ready to use. If reading fails the response is closed and the
// error returned. With stream true the response is returned unread and
// the caller must close it.
//
// SendRequest never looks at the status code; use
// Response.RaiseForStatus for that.
func (c *Client) SendRequest(req *rest.Request, stream bool) (*rest.Response, error) {
	env, err := c.SendRequestEnvelope(req, stream)
	if err != nil {
		return nil, err
	}
	return env.Response, nil
}

// SendRequestEnvelope is like SendRequest but returns the envelope,
// which also holds the request the transport finally sent.
func (c *Client) SendRequestEnvelope(req *rest.Request, stream bool) (*policy.Envelope, error) {
	if req == nil {
		panic("corehttp: nil request")
	}
	env, err := c.pipeline.Run(req)
	if err != nil {
		return nil, err
	}
	if !stream {
		if err = readAndClose(env.Response); err != nil {
			return nil, err
		}
	}
	return env, nil
}

func readAndClose(resp *rest.Response) error {
	_, readErr := resp.Read()
	closeErr := resp.Close()
	if readErr == nil {
		return closeErr
	}
	if closeErr == nil {
		return readErr
	}
	return multierror.Append(readErr, closeErr)
}

// Open readies the transport for use. It is needed only to reopen a
// closed client.
func (c *Client) Open() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = false
	return c.pipeline.Open()
}

// Close releases the transport and any policies holding resources.
// Only the first call after Open has an effect; later calls return nil.
func (c *Client) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.pipeline.Close()
}
