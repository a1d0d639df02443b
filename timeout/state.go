// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import "github.com/gogama/corehttp/rest"

// State is the timeout history of a request across its attempts.
type State struct {
	// Attempts is the number of attempts recorded so far.
	Attempts int
	// Timeouts is the number of recorded attempts which timed out.
	Timeouts int
	// LastTimedOut reports whether the most recent attempt timed out.
	LastTimedOut bool
}

type stateKey struct{}

// StateOf returns the timeout history recorded on req. A request with
// no recorded attempts has the zero State.
func StateOf(req *rest.Request) State {
	if req == nil {
		return State{}
	}
	s, _ := req.Value(stateKey{}).(State)
	return s
}

// Record adds the outcome of one attempt to the timeout history of req.
// The transport calls Record after every attempt.
func Record(req *rest.Request, timedOut bool) {
	s := StateOf(req)
	s.Attempts++
	s.LastTimedOut = timedOut
	if timedOut {
		s.Timeouts++
	}
	req.SetValue(stateKey{}, s)
}
