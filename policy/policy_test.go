// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gogama/corehttp/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunc(t *testing.T) {
	req := newRequest(t, "GET", "http://example.com", nil)
	var seen *rest.Request
	p := Func(func(r *rest.Request, next Next) (*Envelope, error) {
		seen = r
		r.Header.Set("X-Func", "1")
		return next(r)
	})
	env, err := p.Do(req, respond(200, nil, ""))
	require.NoError(t, err)
	assert.Same(t, req, seen)
	assert.Same(t, req, env.Request)
	assert.Equal(t, "1", req.Header.Get("X-Func"))
}

func TestList(t *testing.T) {
	a := &RequestIDPolicy{}
	b := &HeadersPolicy{}
	l := List()
	assert.NotNil(t, l)
	assert.Empty(t, l)
	assert.Equal(t, []Policy{a}, List(a))
	assert.Equal(t, []Policy{a, b}, List(a, nil, b))
}

func TestFromHooks(t *testing.T) {
	t.Run("order", func(t *testing.T) {
		var calls []string
		p := FromHooks(Hooks{
			OnRequest: func(req *rest.Request) error {
				calls = append(calls, "request")
				return nil
			},
			OnResponse: func(req *rest.Request, resp *rest.Response) error {
				calls = append(calls, "response")
				assert.Equal(t, 201, resp.StatusCode)
				return nil
			},
		})
		next := func(req *rest.Request) (*Envelope, error) {
			calls = append(calls, "next")
			return respond(201, nil, "")(req)
		}
		env, err := p.Do(newRequest(t, "GET", "x", nil), next)
		require.NoError(t, err)
		assert.Equal(t, 201, env.Response.StatusCode)
		assert.Equal(t, []string{"request", "next", "response"}, calls)
	})
	t.Run("nil hooks", func(t *testing.T) {
		env, err := FromHooks(Hooks{}).Do(newRequest(t, "GET", "x", nil), respond(200, nil, ""))
		require.NoError(t, err)
		assert.Equal(t, 200, env.Response.StatusCode)
	})
	t.Run("request error short-circuits", func(t *testing.T) {
		hookErr := errors.New("nope")
		p := FromHooks(Hooks{OnRequest: func(*rest.Request) error { return hookErr }})
		env, err := p.Do(newRequest(t, "GET", "x", nil), func(*rest.Request) (*Envelope, error) {
			t.Fatal("next must not be called")
			return nil, nil
		})
		assert.Nil(t, env)
		assert.Same(t, hookErr, err)
	})
	t.Run("response error closes response", func(t *testing.T) {
		hookErr := errors.New("bad response")
		body := &trackedBody{}
		p := FromHooks(Hooks{OnResponse: func(*rest.Request, *rest.Response) error { return hookErr }})
		env, err := p.Do(newRequest(t, "GET", "x", nil), func(req *rest.Request) (*Envelope, error) {
			return &Envelope{Request: req, Response: rest.NewResponse(req, &http.Response{
				StatusCode: 200,
				Body:       body,
			})}, nil
		})
		assert.Nil(t, env)
		assert.Same(t, hookErr, err)
		assert.True(t, body.closed)
	})
	t.Run("next error skips response hook", func(t *testing.T) {
		nextErr := errors.New("transport")
		p := FromHooks(Hooks{OnResponse: func(*rest.Request, *rest.Response) error {
			t.Fatal("OnResponse must not be called")
			return nil
		}})
		_, err := p.Do(newRequest(t, "GET", "x", nil), fail(nextErr))
		assert.Same(t, nextErr, err)
	})
}

func TestDefaultSLogger(t *testing.T) {
	logger := DefaultSLogger()
	assert.NotNil(t, logger)
	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "key", "value")
	assert.Equal(t, logger, loggerOrDefault(nil))
}

func TestNewSpanID(t *testing.T) {
	a, b := NewSpanID(), NewSpanID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('7'), a[14])
}
