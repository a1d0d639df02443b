// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	urlpkg "net/url"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/http/httpguts"
)

const (
	nilCtxMsg = "corehttp/rest: nil context"
)

// RequestOptions holds the optional parts of a request under
// construction. At most one of Content, JSON, Data and Files is normally
// set. When several are, the body is chosen in this order:
//
// • Content, used verbatim;
//
// • Data, when it is not a mapping, used as Content;
//
// • JSON, serialized;
//
// • Files, as a multipart body which also carries any Data mapping as
// form fields;
//
// • Data, URL-encoded.
type RequestOptions struct {
	// Params are query parameters merged into the URL. A parameter
	// replaces any same-named parameter already in the URL.
	Params urlpkg.Values

	// Header holds caller headers. Caller headers are never overwritten
	// by headers computed from the body.
	Header *Header

	// Content is raw body content: a string, []byte, [][]byte (a finite
	// sequence of chunks) or io.Reader (a stream).
	Content interface{}

	// JSON is any value accepted by encoding/json.
	JSON interface{}

	// Data is form data (map[string]string, map[string][]string or
	// url.Values), or raw content in any form accepted by Content.
	Data interface{}

	// Files are multipart file uploads.
	Files Files
}

// A Request is an HTTP request to be sent through a pipeline.
//
// The method, URL and body of a Request are fixed at construction.
// The Header may be changed, and policies do change it, for example to
// add authorization. Because a retry resends the same Request, policies
// must not assume exclusive ownership of it.
type Request struct {
	// Header contains the request header fields, including any headers
	// computed from the body at construction.
	Header *Header

	method string
	url    string
	body   body

	// consumed guards one-shot stream bodies.
	consumed *onceFlag

	// ctx allows the request to be cancelled. It should only be
	// modified by copying the whole Request using WithContext.
	ctx context.Context

	values *valueStore
}

// NewRequest wraps NewRequestWithContext using the background context.
func NewRequest(method, url string, opts *RequestOptions) (*Request, error) {
	return NewRequestWithContext(context.Background(), method, url, opts)
}

// NewRequestWithContext returns a new Request given a method, URL and
// optional request options.
//
// An empty method means GET. The method must be a valid HTTP token and
// every caller header name and value must be valid, otherwise an error
// is returned. Body resolution follows the order documented on
// RequestOptions.
func NewRequestWithContext(ctx context.Context, method, url string, opts *RequestOptions) (*Request, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("corehttp/rest: invalid method %q", method)
	}
	if opts == nil {
		opts = &RequestOptions{}
	}
	if len(opts.Params) > 0 {
		var err error
		url, err = formatParameters(url, opts.Params)
		if err != nil {
			return nil, err
		}
	}
	var badHeader error
	opts.Header.Range(func(name, value string) bool {
		if !httpguts.ValidHeaderFieldName(name) {
			badHeader = fmt.Errorf("corehttp/rest: invalid header name %q", name)
		} else if !httpguts.ValidHeaderFieldValue(value) {
			badHeader = fmt.Errorf("corehttp/rest: invalid value for header %q", name)
		}
		return badHeader == nil
	})
	if badHeader != nil {
		return nil, badHeader
	}
	b, defaults, err := resolveBody(opts)
	if err != nil {
		return nil, err
	}
	h := opts.Header.Clone()
	for _, d := range defaults {
		if strings.EqualFold(d.name, "Transfer-Encoding") && h.Has("Content-Length") {
			continue
		}
		h.SetDefault(d.name, d.value)
	}
	return &Request{
		Header:   h,
		method:   method,
		url:      url,
		body:     b,
		consumed: &onceFlag{},
		ctx:      ctx,
		values:   &valueStore{},
	}, nil
}

var knownOptions = map[string]bool{
	"params":  true,
	"headers": true,
	"content": true,
	"json":    true,
	"data":    true,
	"files":   true,
}

// NewRequestFromMap constructs a Request from keyword options. The
// recognized keys are "params", "headers", "content", "json", "data"
// and "files", with the value types of the same-named RequestOptions
// fields; "headers" may also be a map[string]string and "params" a
// map[string]string.
//
// Any other key is rejected with an *OptionError, which matches
// ErrUnknownOption.
func NewRequestFromMap(method, url string, kw map[string]interface{}) (*Request, error) {
	var unknown []string
	for k := range kw {
		if !knownOptions[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &OptionError{Keys: unknown}
	}

	opts := &RequestOptions{
		Content: kw["content"],
		JSON:    kw["json"],
		Data:    kw["data"],
	}
	switch x := kw["params"].(type) {
	case nil:
	case urlpkg.Values:
		opts.Params = x
	case map[string]string:
		opts.Params = make(urlpkg.Values, len(x))
		for k, v := range x {
			opts.Params.Set(k, v)
		}
	default:
		return nil, fmt.Errorf("corehttp/rest: invalid params type %T", x)
	}
	switch x := kw["headers"].(type) {
	case nil:
	case *Header:
		opts.Header = x
	case map[string]string:
		names := make([]string, 0, len(x))
		for k := range x {
			names = append(names, k)
		}
		sort.Strings(names)
		opts.Header = &Header{}
		for _, k := range names {
			opts.Header.Set(k, x[k])
		}
	default:
		return nil, fmt.Errorf("corehttp/rest: invalid headers type %T", x)
	}
	switch x := kw["files"].(type) {
	case nil:
	case Files:
		opts.Files = x
	case map[string]File:
		opts.Files = Files(x)
	default:
		return nil, fmt.Errorf("corehttp/rest: invalid files type %T", x)
	}
	return NewRequest(method, url, opts)
}

// Method returns the HTTP method.
func (r *Request) Method() string {
	return r.method
}

// URL returns the request URL, including any merged query parameters.
func (r *Request) URL() string {
	return r.url
}

// Kind returns how the request body was specified.
func (r *Request) Kind() BodyKind {
	return r.body.kind
}

// Content returns the current body representation: a []byte for bodies
// held in memory (raw bytes, JSON, form and multipart bodies), a
// [][]byte for chunk sequences, an io.Reader for streams, or nil for an
// empty body.
func (r *Request) Content() interface{} {
	switch {
	case r.body.data != nil:
		return r.body.data
	case r.body.chunks != nil:
		return r.body.chunks
	case r.body.stream != nil:
		return r.body.stream
	default:
		return nil
	}
}

// Rewindable reports whether the body can be sent more than once. Only
// io.Reader stream bodies are not rewindable.
func (r *Request) Rewindable() bool {
	return r.body.rewindable()
}

// BodyReader returns a reader positioned at the start of the body, or
// nil for an empty body. Each call on a rewindable body returns a fresh
// reader. A stream body is handed out once; later calls return
// ErrBodyConsumed.
func (r *Request) BodyReader() (io.ReadCloser, error) {
	switch {
	case r.body.data != nil:
		return ioutil.NopCloser(bytes.NewReader(r.body.data)), nil
	case r.body.chunks != nil:
		rs := make([]io.Reader, len(r.body.chunks))
		for i := range r.body.chunks {
			rs[i] = bytes.NewReader(r.body.chunks[i])
		}
		return ioutil.NopCloser(io.MultiReader(rs...)), nil
	case r.body.stream != nil:
		if !r.consumed.set() {
			return nil, ErrBodyConsumed
		}
		if rc, ok := r.body.stream.(io.ReadCloser); ok {
			return rc, nil
		}
		return ioutil.NopCloser(r.body.stream), nil
	default:
		return nil, nil
	}
}

// Context returns the request's context. The returned context is always
// non-nil; it defaults to the background context.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of r with its context changed to
// ctx, which must be non-nil. The copy shares r's header, body and
// values, as it represents the same logical request.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	r2 := new(Request)
	*r2 = *r
	r2.ctx = ctx
	return r2
}

// Copy returns an independent copy of r. The header and body data are
// deep copied and the copy has its own values. A stream body cannot be
// duplicated, so a request with a stream body is instead copied
// shallowly, sharing everything with r.
func (r *Request) Copy() *Request {
	r2 := new(Request)
	*r2 = *r
	if r.body.stream != nil {
		return r2
	}
	r2.Header = r.Header.Clone()
	r2.body = r.body.copy()
	r2.consumed = &onceFlag{}
	r2.values = r.values.clone()
	return r2
}

// Redirect returns the request to send when following a redirect of r
// to url with the given method. Headers are copied. The body is carried
// over only if keepBody is true; otherwise the new request has an empty
// body and the body headers computed for r are dropped.
func (r *Request) Redirect(method, url string, keepBody bool) *Request {
	r2 := new(Request)
	*r2 = *r
	r2.Header = r.Header.Clone()
	r2.values = r.values.clone()
	r2.method = method
	r2.url = url
	if !keepBody {
		r2.body = body{kind: NoBody}
		r2.Header.Del("Content-Length")
		r2.Header.Del("Content-Type")
		r2.Header.Del("Transfer-Encoding")
	}
	return r2
}

// SetValue attaches arbitrary data to the request. Policies use values
// to pass per-request state to each other and to the transport. Keys
// follow the rules of context.WithValue.
//
// Values are shared between a request and its WithContext copies.
func (r *Request) SetValue(key, value interface{}) {
	r.values.set(key, value)
}

// Value returns the value associated with key, or nil.
func (r *Request) Value(key interface{}) interface{} {
	return r.values.get(key)
}

// String returns a short description of the request.
func (r *Request) String() string {
	return fmt.Sprintf("<Request [%s], url: '%s'>", r.method, r.url)
}

type valueStore struct {
	lock sync.Mutex
	m    map[interface{}]interface{}
}

func (s *valueStore) set(key, value interface{}) {
	if key == nil {
		panic("corehttp/rest: nil key")
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.m == nil {
		s.m = make(map[interface{}]interface{})
	}
	s.m[key] = value
}

func (s *valueStore) get(key interface{}) interface{} {
	if s == nil {
		return nil
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.m[key]
}

func (s *valueStore) clone() *valueStore {
	s2 := &valueStore{}
	if s == nil {
		return s2
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	for k, v := range s.m {
		s2.set(k, v)
	}
	return s2
}

type onceFlag struct {
	lock sync.Mutex
	done bool
}

// set marks the flag and reports whether this call was the first.
func (f *onceFlag) set() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.done {
		return false
	}
	f.done = true
	return true
}

func formatParameters(url string, params urlpkg.Values) (string, error) {
	u, err := urlpkg.Parse(url)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func validMethod(method string) bool {
	return strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}
