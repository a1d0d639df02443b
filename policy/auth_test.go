// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/gogama/corehttp/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerTokenPolicy(t *testing.T) {
	t.Run("nil source", func(t *testing.T) {
		assert.PanicsWithValue(t, "corehttp/policy: nil token source", func() {
			NewBearerTokenPolicy(nil)
		})
	})
	t.Run("static", func(t *testing.T) {
		req := newRequest(t, "GET", "https://example.com", nil)
		_, err := NewBearerTokenPolicy(StaticToken("tok")).Do(req, respond(200, nil, ""))
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	})
	t.Run("asked on every attempt", func(t *testing.T) {
		type key struct{}
		n := 0
		src := TokenSourceFunc(func(ctx context.Context, scopes ...string) (string, error) {
			n++
			assert.Equal(t, []string{"a", "b"}, scopes)
			assert.Equal(t, "v", ctx.Value(key{}))
			return string(rune('0' + n)), nil
		})
		p := NewBearerTokenPolicy(src, "a", "b")
		req := newRequest(t, "GET", "https://example.com", nil)
		req = req.WithContext(context.WithValue(req.Context(), key{}, "v"))
		_, err := p.Do(req, respond(200, nil, ""))
		require.NoError(t, err)
		assert.Equal(t, "Bearer 1", req.Header.Get("Authorization"))
		_, err = p.Do(req, respond(200, nil, ""))
		require.NoError(t, err)
		assert.Equal(t, "Bearer 2", req.Header.Get("Authorization"))
	})
	t.Run("http rejected", func(t *testing.T) {
		req := newRequest(t, "GET", "http://example.com", nil)
		_, err := NewBearerTokenPolicy(StaticToken("tok")).Do(req, func(*rest.Request) (*Envelope, error) {
			t.Fatal("next must not be called")
			return nil, nil
		})
		assert.Same(t, ErrInsecureAuth, err)
		assert.False(t, req.Header.Has("Authorization"))
	})
	t.Run("http allowed", func(t *testing.T) {
		req := newRequest(t, "GET", "http://example.com", nil)
		p := NewBearerTokenPolicy(StaticToken("tok"))
		p.AllowHTTP = true
		_, err := p.Do(req, respond(200, nil, ""))
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	})
	t.Run("source error", func(t *testing.T) {
		srcErr := errors.New("expired")
		src := TokenSourceFunc(func(context.Context, ...string) (string, error) { return "", srcErr })
		_, err := NewBearerTokenPolicy(src).Do(newRequest(t, "GET", "https://example.com", nil), respond(200, nil, ""))
		assert.True(t, errors.Is(err, srcErr))
	})
}
