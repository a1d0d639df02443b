// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"github.com/gogama/corehttp/rest"
	"github.com/google/uuid"
)

// DefaultRequestIDHeader is the header RequestIDPolicy writes when its
// Header field is empty.
const DefaultRequestIDHeader = "X-Request-ID"

// RequestIDPolicy stamps every request with an id header so client and
// server logs can be correlated. A request which already carries the
// header keeps its value.
//
// The zero value generates a random UUID for each request and writes it
// to DefaultRequestIDHeader.
type RequestIDPolicy struct {
	// Header is the header to write. If empty, DefaultRequestIDHeader
	// is used.
	Header string
	// RequestID, if not empty, is written instead of a generated id.
	RequestID string
}

// Do implements Policy.
func (p *RequestIDPolicy) Do(req *rest.Request, next Next) (*Envelope, error) {
	name := p.Header
	if name == "" {
		name = DefaultRequestIDHeader
	}
	if !req.Header.Has(name) {
		id := p.RequestID
		if id == "" {
			id = uuid.NewString()
		}
		req.Header.Set(name, id)
	}
	return next(req)
}
