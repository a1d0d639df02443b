// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// A Waiter specifies how long to wait before retrying a failed
// attempt.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines.
//
// A Policy does not call its Waiter if its Decider returned false.
//
// This package provides the Waiter constructors NewExpWaiter,
// NewFixedWaiter and RespectRetryAfter. In addition it provides a
// concrete instance suitable for many typical use cases, DefaultWaiter.
type Waiter interface {
	Wait(a *Attempt) time.Duration
}

// DefaultWaiter is the default retry wait policy. It honors a
// Retry-After response header of up to one minute, and otherwise uses a
// jittered exponential backoff formula with a base wait of 800
// milliseconds and a maximum wait of 60 seconds.
var DefaultWaiter = RespectRetryAfter(NewExpWaiter(800*time.Millisecond, 60*time.Second, time.Now()), time.Minute)

// NewFixedWaiter constructs a Waiter that always returns the given
// duration.
//
// Use NewFixedWaiter to obtain a constant retry backoff.
func NewFixedWaiter(d time.Duration) Waiter {
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ *Attempt) time.Duration {
	return time.Duration(w)
}

// NewExpWaiter constructs a Waiter implementing an exponential backoff
// formula with optional jitter.
//
// The formula implemented is the "Full Jitter" approach described in:
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter.
//
// Parameters base and max control the exponential calculation of the
// ceiling:
//
//	ceil := min(base * 2**index, max)
//
// Base and max must be positive values, and max must be at least equal
// to base.
//
// Parameter jitter is used to generate a random number between 0 and
// ceil. To make a waiter that does not jitter and simply returns
// ceil on each attempt, pass nil for jitter. Otherwise you may specify
// either a random number generator seed value (as a time.Time, int, or
// int64) or a random number generator (as a rand.Source). If a seed
// value is specified, it is used to seed a random number generator
// for calculating jitter. If a rand.Source is specified, it is used to
// calculate jitter.
func NewExpWaiter(base, max time.Duration, jitter interface{}) Waiter {
	if base < 1 {
		panic("corehttp/retry: base must be positive")
	}
	if max < base {
		panic("corehttp/retry: max must be at least base")
	}
	r := jitterToRand(jitter)
	return &jitterExpWaiter{
		base: base,
		max:  max,
		rand: r,
	}
}

type jitterExpWaiter struct {
	base time.Duration
	max  time.Duration
	rand *rand.Rand
	lock sync.Mutex
}

func (w *jitterExpWaiter) Wait(a *Attempt) time.Duration {
	exp := int64(1) << a.Index
	if exp < 1 {
		exp = 1<<63 - 1
	}

	ceil := int64(w.base) * exp
	if ceil < int64(w.base) || int64(w.max) < ceil {
		ceil = int64(w.max)
	}

	duration := ceil
	if ceil > 0 {
		w.lock.Lock()
		defer w.lock.Unlock()
		if w.rand != nil {
			duration = w.rand.Int63n(ceil)
		}
	}

	return time.Duration(duration)
}

func jitterToRand(jitter interface{}) *rand.Rand {
	var s rand.Source
	switch j := jitter.(type) {
	case nil:
		return nil
	case time.Time:
		s = rand.NewSource(j.UnixNano())
	case int:
		s = rand.NewSource(int64(j))
	case int64:
		s = rand.NewSource(j)
	case *rand.Rand:
		if j == nil {
			panic("corehttp/retry: jitter may not be a typed nil")
		}
		return j
	case rand.Source:
		s = j
	default:
		panic("corehttp/retry: invalid jitter type")
	}
	return rand.New(s)
}

// RespectRetryAfter constructs a Waiter that waits for the delay the
// server asked for in the response headers retry-after-ms,
// x-ms-retry-after-ms or Retry-After, in that order of preference. The
// Retry-After value may be either a number of seconds or an HTTP date.
//
// If no usable delay is present, or it exceeds max, the wait is
// delegated to w. A max of zero or less means no limit.
func RespectRetryAfter(w Waiter, max time.Duration) Waiter {
	if w == nil {
		panic("corehttp/retry: nil waiter")
	}
	return &retryAfterWaiter{w: w, max: max, now: time.Now}
}

type retryAfterWaiter struct {
	w   Waiter
	max time.Duration
	now func() time.Time
}

func (w *retryAfterWaiter) Wait(a *Attempt) time.Duration {
	if d, ok := w.retryAfter(a); ok && (w.max <= 0 || d <= w.max) {
		return d
	}
	return w.w.Wait(a)
}

func (w *retryAfterWaiter) retryAfter(a *Attempt) (time.Duration, bool) {
	if a.Response == nil {
		return 0, false
	}
	h := a.Response.Header
	for _, name := range []string{"retry-after-ms", "x-ms-retry-after-ms"} {
		if v, ok := h.Lookup(name); ok {
			if ms, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && ms >= 0 {
				return time.Duration(ms * float64(time.Millisecond)), true
			}
		}
	}
	v, ok := h.Lookup("Retry-After")
	if !ok {
		return 0, false
	}
	v = strings.TrimSpace(v)
	if s, err := strconv.ParseInt(v, 10, 64); err == nil {
		if s < 0 {
			return 0, false
		}
		return time.Duration(s) * time.Second, true
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return 0, false
	}
	d := t.Sub(w.now())
	if d < 0 {
		d = 0
	}
	return d, true
}
