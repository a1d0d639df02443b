// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gogama/corehttp/rest"
	"github.com/gogama/corehttp/transport"
)

// ProxyPolicy chooses a proxy for each request by URL scheme and hands
// it to the transport through the request context. Requests whose
// scheme has no entry use the transport's default proxy behavior.
type ProxyPolicy struct {
	// Proxies maps a lower case URL scheme, such as "https", to the
	// proxy for that scheme. A nil URL forces a direct connection.
	Proxies map[string]*url.URL
}

// NewProxyPolicy parses a scheme to proxy URL map into a ProxyPolicy.
func NewProxyPolicy(proxies map[string]string) (*ProxyPolicy, error) {
	p := &ProxyPolicy{Proxies: make(map[string]*url.URL, len(proxies))}
	for scheme, raw := range proxies {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("corehttp/policy: invalid proxy for %s: %w", scheme, err)
		}
		p.Proxies[strings.ToLower(scheme)] = u
	}
	return p, nil
}

// Do implements Policy.
func (p *ProxyPolicy) Do(req *rest.Request, next Next) (*Envelope, error) {
	if len(p.Proxies) == 0 {
		return next(req)
	}
	u, err := url.Parse(req.URL())
	if err != nil {
		return next(req)
	}
	proxy, ok := p.Proxies[strings.ToLower(u.Scheme)]
	if !ok {
		return next(req)
	}
	return next(req.WithContext(transport.WithProxy(req.Context(), proxy)))
}
