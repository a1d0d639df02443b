// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package rest

import (
	"net/http"
	"sort"
	"strings"
)

// A Header is an ordered collection of HTTP header fields whose names
// match case-insensitively.
//
// Unlike http.Header, a Header remembers the casing each name was first
// inserted with, and iterates in insertion order. Lookups, updates and
// deletions ignore case, so "content-type" and "Content-Type" name the
// same field.
//
// Each field holds a single value. The zero value is an empty Header
// ready to use.
type Header struct {
	fields []headerField
	index  map[string]int
}

type headerField struct {
	name  string
	value string
}

// NewHeader returns a Header populated from alternating name and value
// arguments, in order. It panics if given an odd number of arguments.
func NewHeader(pairs ...string) *Header {
	if len(pairs)%2 != 0 {
		panic("corehttp/rest: odd number of header arguments")
	}
	h := &Header{}
	for i := 0; i < len(pairs); i += 2 {
		h.Set(pairs[i], pairs[i+1])
	}
	return h
}

// HeaderFromHTTP converts a net/http header into a Header. Because
// http.Header has no order, names are inserted in sorted order. Multiple
// values for the same name are joined with ", ".
func HeaderFromHTTP(src http.Header) *Header {
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)
	h := &Header{}
	for _, name := range names {
		h.Set(name, strings.Join(src[name], ", "))
	}
	return h
}

func key(name string) string {
	return strings.ToLower(name)
}

// Get returns the value of the named field, or the empty string if the
// field is not present.
func (h *Header) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// Lookup returns the value of the named field and whether it is
// present.
func (h *Header) Lookup(name string) (string, bool) {
	if h == nil || h.index == nil {
		return "", false
	}
	i, ok := h.index[key(name)]
	if !ok {
		return "", false
	}
	return h.fields[i].value, true
}

// Has reports whether the named field is present.
func (h *Header) Has(name string) bool {
	_, ok := h.Lookup(name)
	return ok
}

// Set sets the named field to value. If the field is already present its
// value is replaced, keeping its original position and casing.
func (h *Header) Set(name, value string) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	k := key(name)
	if i, ok := h.index[k]; ok {
		h.fields[i].value = value
		return
	}
	h.index[k] = len(h.fields)
	h.fields = append(h.fields, headerField{name: name, value: value})
}

// SetDefault sets the named field to value only if the field is absent.
// It returns true if the value was set.
func (h *Header) SetDefault(name, value string) bool {
	if h.Has(name) {
		return false
	}
	h.Set(name, value)
	return true
}

// Del removes the named field, if present.
func (h *Header) Del(name string) {
	if h == nil || h.index == nil {
		return
	}
	k := key(name)
	i, ok := h.index[k]
	if !ok {
		return
	}
	delete(h.index, k)
	h.fields = append(h.fields[:i], h.fields[i+1:]...)
	for j := i; j < len(h.fields); j++ {
		h.index[key(h.fields[j].name)] = j
	}
}

// Len returns the number of fields.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.fields)
}

// Keys returns the field names, in insertion order and original casing.
func (h *Header) Keys() []string {
	if h == nil {
		return nil
	}
	keys := make([]string, len(h.fields))
	for i := range h.fields {
		keys[i] = h.fields[i].name
	}
	return keys
}

// Range calls f for each field in insertion order until f returns
// false.
func (h *Header) Range(f func(name, value string) bool) {
	if h == nil {
		return
	}
	for _, field := range h.fields {
		if !f(field.name, field.value) {
			return
		}
	}
}

// Update sets every field of other onto h, in other's order.
func (h *Header) Update(other *Header) {
	other.Range(func(name, value string) bool {
		h.Set(name, value)
		return true
	})
}

// Clone returns a copy of h. Cloning a nil Header yields an empty one.
func (h *Header) Clone() *Header {
	h2 := &Header{}
	h2.Update(h)
	return h2
}

// HTTP converts h into a net/http header.
func (h *Header) HTTP() http.Header {
	hh := make(http.Header, h.Len())
	h.Range(func(name, value string) bool {
		hh[http.CanonicalHeaderKey(name)] = []string{value}
		return true
	})
	return hh
}
