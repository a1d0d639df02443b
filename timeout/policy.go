// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/corehttp/rest"
)

// A Policy decides the timeout of each attempt to send a request
// through the transport, including attempts made by the retry policy.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the next attempt to send
	// req. The timeout history of req is available from StateOf.
	Timeout(req *rest.Request) time.Duration
}

// DefaultPolicy is the default timeout policy. It sets a fixed timeout
// of 5 minutes on each attempt, leaving tighter limits to the caller's
// context.
var DefaultPolicy Policy = Fixed(5 * time.Minute)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that returns d for every attempt.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that lengthens the next timeout
// when the previous attempt timed out.
//
// Parameter usual is the timeout for the first attempt and for every
// attempt whose predecessor did not time out. Parameter after holds the
// timeouts to use after a timed out attempt: after[0] following the
// first timeout of the request, after[1] following the second, and so
// on, repeating the last element once after is exhausted.
//
// 	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// Here p usually allows 200 milliseconds, 1 second right after the
// first timeout and 10 seconds right after any later timeout.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

type policy []time.Duration

func (p policy) Timeout(req *rest.Request) time.Duration {
	s := StateOf(req)
	if !s.LastTimedOut {
		return p[0]
	}

	i := s.Timeouts
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}
