// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package rest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader(t *testing.T) {
	t.Run("zero value", func(t *testing.T) {
		var h Header
		assert.Equal(t, 0, h.Len())
		assert.False(t, h.Has("foo"))
		assert.Empty(t, h.Get("foo"))
		h.Del("foo")
		h.Set("Foo", "bar")
		assert.Equal(t, "bar", h.Get("foo"))
	})
	t.Run("nil", func(t *testing.T) {
		var h *Header
		assert.Equal(t, 0, h.Len())
		assert.Nil(t, h.Keys())
		_, ok := h.Lookup("x")
		assert.False(t, ok)
		assert.Equal(t, 0, h.Clone().Len())
	})
	t.Run("case insensitive", func(t *testing.T) {
		h := NewHeader("Content-Type", "text/plain", "X-Custom", "1")
		assert.Equal(t, "text/plain", h.Get("content-type"))
		assert.Equal(t, "text/plain", h.Get("CONTENT-TYPE"))
		assert.True(t, h.Has("x-custom"))
		h.Set("content-type", "application/json")
		assert.Equal(t, 2, h.Len())
		assert.Equal(t, []string{"Content-Type", "X-Custom"}, h.Keys())
		assert.Equal(t, "application/json", h.Get("Content-Type"))
	})
	t.Run("insertion order", func(t *testing.T) {
		h := NewHeader("b", "2", "A", "1", "c", "3")
		var names, values []string
		h.Range(func(name, value string) bool {
			names = append(names, name)
			values = append(values, value)
			return true
		})
		assert.Equal(t, []string{"b", "A", "c"}, names)
		assert.Equal(t, []string{"2", "1", "3"}, values)
		h.Del("a")
		assert.Equal(t, []string{"b", "c"}, h.Keys())
		assert.Equal(t, "3", h.Get("C"))
		h.Set("a", "4")
		assert.Equal(t, []string{"b", "c", "a"}, h.Keys())
	})
	t.Run("Range stops early", func(t *testing.T) {
		h := NewHeader("a", "1", "b", "2")
		n := 0
		h.Range(func(_, _ string) bool {
			n++
			return false
		})
		assert.Equal(t, 1, n)
	})
	t.Run("SetDefault", func(t *testing.T) {
		h := NewHeader("Content-Length", "5")
		assert.False(t, h.SetDefault("content-length", "10"))
		assert.True(t, h.SetDefault("Content-Type", "text/plain"))
		assert.Equal(t, "5", h.Get("Content-Length"))
		assert.Equal(t, "text/plain", h.Get("Content-Type"))
	})
	t.Run("Clone and Update", func(t *testing.T) {
		h := NewHeader("a", "1")
		h2 := h.Clone()
		h2.Set("A", "2")
		h2.Set("b", "3")
		assert.Equal(t, "1", h.Get("a"))
		assert.False(t, h.Has("b"))
		h.Update(h2)
		assert.Equal(t, "2", h.Get("a"))
		assert.Equal(t, "3", h.Get("b"))
	})
	t.Run("odd arguments", func(t *testing.T) {
		assert.PanicsWithValue(t, "corehttp/rest: odd number of header arguments", func() {
			NewHeader("a")
		})
	})
}

func TestHeaderHTTP(t *testing.T) {
	t.Run("to net/http", func(t *testing.T) {
		h := NewHeader("x-foo", "bar", "Accept", "*/*")
		hh := h.HTTP()
		assert.Equal(t, http.Header{
			"X-Foo":  []string{"bar"},
			"Accept": []string{"*/*"},
		}, hh)
	})
	t.Run("from net/http", func(t *testing.T) {
		hh := http.Header{
			"Vary":         []string{"Accept", "Origin"},
			"Content-Type": []string{"text/plain"},
		}
		h := HeaderFromHTTP(hh)
		require.Equal(t, 2, h.Len())
		assert.Equal(t, []string{"Content-Type", "Vary"}, h.Keys())
		assert.Equal(t, "Accept, Origin", h.Get("vary"))
	})
}
