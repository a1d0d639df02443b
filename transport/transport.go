// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gogama/corehttp/rest"
	"github.com/gogama/corehttp/timeout"
	"github.com/gogama/corehttp/transient"
	"golang.org/x/net/http2"
)

// ErrClosed is wrapped in the error returned by Send on a closed
// transport.
var ErrClosed = errors.New("corehttp/transport: transport closed")

// A Transport sends a single request and returns the raw response. It
// is the innermost stage of a pipeline.
//
// Send must return a response whose Body is an open stream, or an
// error, never both. Open and Close manage the lifetime of the
// underlying connections; Close must be safe to call more than once.
type Transport interface {
	Send(req *rest.Request) (*http.Response, error)
	Open() error
	Close() error
}

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	Do(r *http.Request) (*http.Response, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method. The http.Client type implements it.
type IdleCloser interface {
	CloseIdleConnections()
}

// Config configures an HTTPTransport. Its zero value is a valid
// configuration.
type Config struct {
	// Doer sends the HTTP requests. If nil, a new http.Client is used
	// which never follows redirects, takes its proxy from the request
	// context or else the environment, and speaks HTTP/2 when the
	// server offers it.
	Doer HTTPDoer
	// TimeoutPolicy sets the timeout of each attempt. If nil,
	// timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy
	// DisableHTTP2 turns off HTTP/2 on the default Doer.
	DisableHTTP2 bool
	// MaxIdleConnsPerHost is passed to the default Doer. Zero means the
	// net/http default.
	MaxIdleConnsPerHost int
}

// An HTTPTransport is a Transport built on an HTTPDoer, typically an
// http.Client. HTTPTransport is safe for concurrent use by multiple
// goroutines.
type HTTPTransport struct {
	doer          HTTPDoer
	timeoutPolicy timeout.Policy

	lock   sync.Mutex
	closed bool
}

// NewHTTPTransport returns a transport configured by cfg, which may be
// nil.
func NewHTTPTransport(cfg *Config) *HTTPTransport {
	if cfg == nil {
		cfg = &Config{}
	}
	doer := cfg.Doer
	if doer == nil {
		doer = newDefaultClient(cfg)
	}
	tp := cfg.TimeoutPolicy
	if tp == nil {
		tp = timeout.DefaultPolicy
	}
	return &HTTPTransport{
		doer:          doer,
		timeoutPolicy: tp,
	}
}

func newDefaultClient(cfg *Config) *http.Client {
	t := &http.Transport{
		Proxy: proxyFunc,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if cfg.DisableHTTP2 {
		t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	} else if err := http2.ConfigureTransport(t); err != nil {
		t.ForceAttemptHTTP2 = true
	}
	return &http.Client{
		Transport: t,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Doer returns the HTTPDoer the transport sends through.
func (t *HTTPTransport) Doer() HTTPDoer {
	return t.doer
}

// Send sends req once, applying the attempt timeout chosen by the
// transport's timeout policy. The timeout stays in force until the
// returned response body is closed.
//
// Any returned error is a *url.Error. Send records whether the attempt
// timed out on req, for the benefit of adaptive timeout policies.
func (t *HTTPTransport) Send(req *rest.Request) (*http.Response, error) {
	if t.isClosed() {
		return nil, urlErrorWrap(req, ErrClosed)
	}

	ctx, cancel := attemptContext(req.Context(), t.timeoutPolicy.Timeout(req))
	hreq, err := toHTTPRequest(ctx, req)
	if err != nil {
		cancel()
		return nil, urlErrorWrap(req, err)
	}

	resp, err := t.doer.Do(hreq)
	if err != nil {
		cancel()
		timeout.Record(req, transient.Categorize(err) == transient.Timeout)
		return nil, urlErrorWrap(req, err)
	}
	timeout.Record(req, false)

	body := resp.Body
	if body == nil {
		body = http.NoBody
	}
	resp.Body = &cancelBody{ReadCloser: body, cancel: cancel}
	return resp, nil
}

// Open readies the transport for use. Opening a closed transport makes
// it usable again.
func (t *HTTPTransport) Open() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.closed = false
	return nil
}

// Close releases idle connections held by the underlying HTTPDoer, if
// it is an IdleCloser, and rejects further sends until the transport is
// reopened. Calling Close on a closed transport does nothing.
func (t *HTTPTransport) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if ic, ok := t.doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
	return nil
}

func (t *HTTPTransport) isClosed() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.closed
}

func attemptContext(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 || d == time.Duration(1<<63-1) {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

func toHTTPRequest(ctx context.Context, req *rest.Request) (*http.Request, error) {
	body, err := req.BodyReader()
	if err != nil {
		return nil, err
	}
	var r io.Reader
	if body != nil {
		r = body
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method(), req.URL(), r)
	if err != nil {
		if body != nil {
			_ = body.Close()
		}
		return nil, err
	}
	hreq.Header = req.Header.HTTP()
	if host := hreq.Header.Get("Host"); host != "" {
		hreq.Host = host
		hreq.Header.Del("Host")
	}
	if body == nil {
		return hreq, nil
	}
	if cl := hreq.Header.Get("Content-Length"); cl != "" {
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || n < 0 {
			_ = body.Close()
			return nil, errors.New("corehttp/transport: invalid Content-Length " + strconv.Quote(cl))
		}
		if n == 0 {
			_ = body.Close()
			hreq.Body = http.NoBody
			hreq.Header.Del("Content-Length")
			return hreq, nil
		}
		hreq.ContentLength = n
	} else if strings.EqualFold(hreq.Header.Get("Transfer-Encoding"), "chunked") {
		hreq.ContentLength = -1
	}
	hreq.Header.Del("Content-Length")
	hreq.Header.Del("Transfer-Encoding")
	if req.Rewindable() {
		hreq.GetBody = req.BodyReader
	}
	return hreq, nil
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
	once   sync.Once
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.cancel)
	return err
}

func urlErrorWrap(req *rest.Request, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(req.Method()),
		URL: req.URL(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
