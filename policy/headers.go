// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"github.com/gogama/corehttp/rest"
)

// HeadersPolicy adds a fixed set of headers to every request,
// overwriting same-named headers already on the request.
type HeadersPolicy struct {
	Header *rest.Header
}

// NewHeadersPolicy returns a HeadersPolicy adding the given name/value
// pairs.
func NewHeadersPolicy(pairs ...string) *HeadersPolicy {
	return &HeadersPolicy{Header: rest.NewHeader(pairs...)}
}

// Do implements Policy.
func (p *HeadersPolicy) Do(req *rest.Request, next Next) (*Envelope, error) {
	p.Header.Range(func(name, value string) bool {
		req.Header.Set(name, value)
		return true
	})
	return next(req)
}
