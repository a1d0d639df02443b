// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/corehttp/rest"
	"github.com/gogama/corehttp/transient"
)

// An Attempt describes the outcome of one attempt to send a request. It
// is what deciders and waiters base their decisions on.
type Attempt struct {
	// Request is the request sent on the attempt. It is the request
	// handed to the retry policy unless a later policy replaced it.
	Request *rest.Request
	// Index is the zero-based index of the attempt.
	Index int
	// Start is when the first attempt started.
	Start time.Time
	// End is when this attempt finished.
	End time.Time
	// Response is the unread response, or nil if the attempt failed.
	Response *rest.Response
	// Err is the error the attempt failed with, or nil.
	Err error
}

// StatusCode returns the response status code, or 0 if there is no
// response.
func (a *Attempt) StatusCode() int {
	if a.Response == nil {
		return 0
	}
	return a.Response.StatusCode
}

// Duration returns the time elapsed from the start of the first attempt
// to the end of this one.
func (a *Attempt) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// Timeout reports whether the attempt failed with a timeout.
func (a *Attempt) Timeout() bool {
	return transient.Categorize(a.Err) == transient.Timeout
}
