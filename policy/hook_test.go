// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEvent(t *testing.T) {
	events := Events()
	require.Len(t, events, numEvents)
	for i, evt := range events {
		assert.Equal(t, Event(i), evt)
		assert.Equal(t, eventNames[i], evt.Name())
		assert.Equal(t, evt.Name(), evt.String())
	}
}

func TestHandlerGroup(t *testing.T) {
	t.Run("nil handler", func(t *testing.T) {
		g := &HandlerGroup{}
		assert.PanicsWithValue(t, "corehttp/policy: nil handler", func() {
			g.PushBack(BeforeSend, nil)
		})
	})
	t.Run("order", func(t *testing.T) {
		var calls []int
		g := &HandlerGroup{}
		for i := 0; i < 3; i++ {
			n := i
			g.PushBack(AfterError, HandlerFunc(func(evt Event, x *Exchange) {
				assert.Equal(t, AfterError, evt)
				calls = append(calls, n)
			}))
		}
		g.run(AfterError, &Exchange{})
		g.run(BeforeSend, &Exchange{})
		assert.Equal(t, []int{0, 1, 2}, calls)
		var nilGroup *HandlerGroup
		nilGroup.run(BeforeSend, &Exchange{})
	})
}

func TestCustomHookPolicy(t *testing.T) {
	t.Run("response", func(t *testing.T) {
		m := newMockHandler(t)
		g := &HandlerGroup{}
		for _, evt := range Events() {
			g.PushBack(evt, m)
		}
		req := newRequest(t, "GET", "x", nil)
		m.On("Handle", BeforeSend, mock.MatchedBy(func(x *Exchange) bool {
			return x.Request == req && x.Response == nil && x.Err == nil
		})).Return().Once()
		m.On("Handle", AfterResponse, mock.MatchedBy(func(x *Exchange) bool {
			return x.Request == req && x.Response != nil && x.Response.StatusCode == 202
		})).Return().Once()
		env, err := (&CustomHookPolicy{Handlers: g}).Do(req, respond(202, nil, ""))
		require.NoError(t, err)
		assert.Equal(t, 202, env.Response.StatusCode)
		m.AssertExpectations(t)
	})
	t.Run("error", func(t *testing.T) {
		m := newMockHandler(t)
		g := &HandlerGroup{}
		g.PushBack(AfterError, m)
		g.PushBack(AfterResponse, m)
		nextErr := errors.New("down")
		m.On("Handle", AfterError, mock.MatchedBy(func(x *Exchange) bool {
			return x.Err == nextErr && x.Response == nil
		})).Return().Once()
		_, err := (&CustomHookPolicy{Handlers: g}).Do(newRequest(t, "GET", "x", nil), fail(nextErr))
		assert.Same(t, nextErr, err)
		m.AssertExpectations(t)
	})
	t.Run("replace request", func(t *testing.T) {
		g := &HandlerGroup{}
		other := newRequest(t, "DELETE", "y", nil)
		g.PushBack(BeforeSend, HandlerFunc(func(_ Event, x *Exchange) {
			x.Request = other
		}))
		env, err := (&CustomHookPolicy{Handlers: g}).Do(newRequest(t, "GET", "x", nil), respond(200, nil, ""))
		require.NoError(t, err)
		assert.Same(t, other, env.Request)
	})
	t.Run("per request handlers", func(t *testing.T) {
		var calls []string
		g := &HandlerGroup{}
		g.PushBack(BeforeSend, HandlerFunc(func(Event, *Exchange) { calls = append(calls, "policy") }))
		perReq := &HandlerGroup{}
		perReq.PushBack(BeforeSend, HandlerFunc(func(Event, *Exchange) { calls = append(calls, "request") }))
		req := newRequest(t, "GET", "x", nil)
		AttachHandlers(req, perReq)
		_, err := (&CustomHookPolicy{Handlers: g}).Do(req, respond(200, nil, ""))
		require.NoError(t, err)
		_, err = (&CustomHookPolicy{}).Do(req, respond(200, nil, ""))
		require.NoError(t, err)
		assert.Equal(t, []string{"policy", "request", "request"}, calls)
	})
}

type mockHandler struct {
	mock.Mock
}

func newMockHandler(t *testing.T) *mockHandler {
	m := &mockHandler{}
	m.Test(t)
	return m
}

func (m *mockHandler) Handle(evt Event, x *Exchange) {
	m.Called(evt, x)
}
