// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport defines the innermost stage of a pipeline, which
// puts a request on the wire and returns the raw HTTP response.
//
// HTTPTransport adapts any HTTPDoer, by default an http.Client that
// leaves redirects to the redirect policy and negotiates HTTP/2 via
// golang.org/x/net/http2. Each attempt gets its own timeout from a
// timeout.Policy, and failures are reported as *url.Error values so
// callers can inspect them the same way as errors from net/http.
package transport
