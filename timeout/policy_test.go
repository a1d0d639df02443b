// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"math"
	"testing"
	"time"

	"github.com/gogama/corehttp/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	req := newRequest(t)
	assert.Equal(t, 5*time.Minute, DefaultPolicy.Timeout(req))
	Record(req, true)
	Record(req, true)
	assert.Equal(t, 5*time.Minute, DefaultPolicy.Timeout(req))
}

func TestInfinite(t *testing.T) {
	req := newRequest(t)
	assert.Equal(t, time.Duration(math.MaxInt64), Infinite.Timeout(req))
	Record(req, true)
	assert.Equal(t, time.Duration(math.MaxInt64), Infinite.Timeout(req))
}

func TestFixed(t *testing.T) {
	p := Fixed(33 * time.Hour)
	req := newRequest(t)
	assert.Equal(t, 33*time.Hour, p.Timeout(req))
	Record(req, true)
	assert.Equal(t, 33*time.Hour, p.Timeout(req))
	Record(req, false)
	assert.Equal(t, 33*time.Hour, p.Timeout(req))
}

func TestAdaptive(t *testing.T) {
	p := Adaptive(5*time.Millisecond, 10*time.Millisecond, 100*time.Millisecond)
	req := newRequest(t)
	assert.Equal(t, 5*time.Millisecond, p.Timeout(req))
	Record(req, true)
	assert.Equal(t, 10*time.Millisecond, p.Timeout(req))
	Record(req, false)
	assert.Equal(t, 5*time.Millisecond, p.Timeout(req))
	Record(req, true)
	assert.Equal(t, 100*time.Millisecond, p.Timeout(req))
	Record(req, true)
	assert.Equal(t, 100*time.Millisecond, p.Timeout(req))
	assert.Equal(t, State{Attempts: 4, Timeouts: 3, LastTimedOut: true}, StateOf(req))
}

func TestAdaptive_NoAfter(t *testing.T) {
	p := Adaptive(time.Second)
	req := newRequest(t)
	Record(req, true)
	assert.Equal(t, time.Second, p.Timeout(req))
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, State{}, StateOf(nil))
	req := newRequest(t)
	assert.Equal(t, State{}, StateOf(req))
	Record(req, false)
	assert.Equal(t, State{Attempts: 1}, StateOf(req))
	cp := req.Copy()
	Record(cp, true)
	assert.Equal(t, State{Attempts: 1}, StateOf(req))
	assert.Equal(t, State{Attempts: 2, Timeouts: 1, LastTimedOut: true}, StateOf(cp))
}

func newRequest(t *testing.T) *rest.Request {
	req, err := rest.NewRequest("GET", "http://example.com", nil)
	require.NoError(t, err)
	return req
}
