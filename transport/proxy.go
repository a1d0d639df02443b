// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"net/http"
	"net/url"
)

type proxyKey struct{}

// WithProxy returns a copy of ctx carrying proxy as the proxy to use
// for requests sent with it. The default Doer of HTTPTransport honors
// it; a nil proxy means connect directly, ignoring the environment.
func WithProxy(ctx context.Context, proxy *url.URL) context.Context {
	return context.WithValue(ctx, proxyKey{}, proxyValue{proxy})
}

// ProxyFromContext returns the proxy set on ctx by WithProxy, if any.
func ProxyFromContext(ctx context.Context) (*url.URL, bool) {
	v, ok := ctx.Value(proxyKey{}).(proxyValue)
	return v.u, ok
}

type proxyValue struct {
	u *url.URL
}

func proxyFunc(r *http.Request) (*url.URL, error) {
	if u, ok := ProxyFromContext(r.Context()); ok {
		return u, nil
	}
	return http.ProxyFromEnvironment(r)
}
