// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
)

// A Response is the response to a Request sent through a pipeline.
//
// A Response starts out unread: the body is still an open stream owned
// by the Response, and Content, Text and JSON fail with a
// *ResponseNotReadError. Read materializes the whole body, caches it and
// releases the stream, after which the content accessors succeed and
// the response is closed. Alternatively, Stream hands the body out for
// incremental consumption.
//
// Close releases the stream. It is idempotent, and must be called on
// every exit path by whoever owns an unread response.
//
// A Response is not safe for concurrent use.
type Response struct {
	// Request is the request that produced this response. It is a back
	// reference only; the response does not own the request.
	Request *Request

	// StatusCode is the HTTP status code, e.g. 200.
	StatusCode int

	// Reason is the human readable status text, e.g. "OK".
	Reason string

	// Header holds the response header fields.
	Header *Header

	// ContentType is the value of the Content-Type header.
	ContentType string

	raw  *http.Response
	body io.ReadCloser

	closed         bool
	streaming      bool
	streamConsumed bool

	read    bool
	content []byte

	text *string

	jsonSet bool
	json    interface{}

	encodingSet bool
	encoding    string
}

// NewResponse wraps a transport-level response. The new Response owns
// raw.Body.
func NewResponse(req *Request, raw *http.Response) *Response {
	if raw == nil {
		panic("corehttp/rest: nil response")
	}
	h := HeaderFromHTTP(raw.Header)
	body := raw.Body
	if body == nil {
		body = http.NoBody
	}
	return &Response{
		Request:     req,
		StatusCode:  raw.StatusCode,
		Reason:      reason(raw),
		Header:      h,
		ContentType: h.Get("Content-Type"),
		raw:         raw,
		body:        body,
	}
}

func reason(raw *http.Response) string {
	code := strconv.Itoa(raw.StatusCode)
	if s := strings.TrimSpace(strings.TrimPrefix(raw.Status, code)); s != "" {
		return s
	}
	return http.StatusText(raw.StatusCode)
}

// URL returns the URL of the request that produced this response.
func (r *Response) URL() string {
	if r.Request == nil {
		return ""
	}
	return r.Request.URL()
}

// HTTP returns the underlying transport-level response. Its Body must
// not be used directly; use Read or Stream.
func (r *Response) HTTP() *http.Response {
	return r.raw
}

// IsClosed reports whether the underlying stream has been released.
func (r *Response) IsClosed() bool {
	return r.closed
}

// IsStreamConsumed reports whether the body stream has been read to
// its end, either by Read or through Stream.
func (r *Response) IsStreamConsumed() bool {
	return r.streamConsumed
}

// Content returns the response body. It fails with a
// *ResponseNotReadError until the response has been read.
func (r *Response) Content() ([]byte, error) {
	if !r.read {
		return nil, &ResponseNotReadError{Response: r}
	}
	return r.content, nil
}

// Read reads the whole body, caches it, and closes the response. Once
// the body has been read, Read returns the cached content without
// further I/O.
//
// Read fails with ErrStreamConsumed if the body was handed out by
// Stream, and with ErrStreamClosed if the response was closed unread.
// If reading fails the response is left open; the caller still owns it
// and must close it.
func (r *Response) Read() ([]byte, error) {
	if r.read {
		return r.content, nil
	}
	if r.streaming || r.streamConsumed {
		return nil, ErrStreamConsumed
	}
	if r.closed {
		return nil, ErrStreamClosed
	}
	b, err := ioutil.ReadAll(r.body)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = []byte{}
	}
	r.content = b
	r.read = true
	return r.content, r.closeStream()
}

// Stream returns the body for incremental reading. Reading the stream
// to its end marks the stream consumed and closes the response; closing
// the stream early closes the response too.
//
// If the response has already been read, Stream returns a reader over
// the cached content. Otherwise the stream may be obtained only once.
func (r *Response) Stream() (io.ReadCloser, error) {
	if r.read {
		return ioutil.NopCloser(bytes.NewReader(r.content)), nil
	}
	if r.streaming || r.streamConsumed {
		return nil, ErrStreamConsumed
	}
	if r.closed {
		return nil, ErrStreamClosed
	}
	r.streaming = true
	return &responseStream{r: r}, nil
}

// WrapStream replaces the unread body stream with fn(stream). Policies
// use it to transform the body before anyone reads it, for example to
// decompress it. It fails once the body has been read, streamed or
// closed.
func (r *Response) WrapStream(fn func(io.ReadCloser) io.ReadCloser) error {
	if r.read || r.streaming || r.streamConsumed || r.closed {
		return errors.New("corehttp/rest: response stream no longer available")
	}
	r.body = fn(r.body)
	return nil
}

// Close releases the body stream. Only the first call has an effect;
// later calls return nil.
func (r *Response) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.body.Close()
}

func (r *Response) closeStream() error {
	r.streamConsumed = true
	return r.Close()
}

// Encoding returns the encoding used by Text: the value given to
// SetEncoding if any, otherwise the charset named in the Content-Type
// header, otherwise the empty string.
func (r *Response) Encoding() string {
	if r.encodingSet {
		return r.encoding
	}
	return charsetOf(r.ContentType)
}

// SetEncoding overrides the encoding used by Text. It discards any
// cached text, but not the cached content or JSON value.
func (r *Response) SetEncoding(enc string) {
	r.encoding = enc
	r.encodingSet = true
	r.text = nil
}

// Text returns the content decoded as a string using Encoding, or
// UTF-8 if Encoding is empty. The decoded text is cached.
func (r *Response) Text() (string, error) {
	content, err := r.Content()
	if err != nil {
		return "", err
	}
	if r.text != nil {
		return *r.text, nil
	}
	s, err := decodeText(r.Encoding(), content)
	if err != nil {
		return "", err
	}
	r.text = &s
	return s, nil
}

// TextWithEncoding decodes the content using enc for this call only.
// The result is not cached, so a later call to Text still decodes with
// Encoding. An empty enc is the same as calling Text.
func (r *Response) TextWithEncoding(enc string) (string, error) {
	if enc == "" {
		return r.Text()
	}
	content, err := r.Content()
	if err != nil {
		return "", err
	}
	return decodeText(enc, content)
}

// JSON parses the text of the response as JSON and returns the parsed
// value, caching it. The response must have been read. If the body is
// not valid JSON, the error is a *DecodeError.
func (r *Response) JSON() (interface{}, error) {
	if _, err := r.Content(); err != nil {
		return nil, err
	}
	if r.jsonSet {
		return r.json, nil
	}
	var v interface{}
	if err := r.DecodeJSON(&v); err != nil {
		return nil, err
	}
	r.json = v
	r.jsonSet = true
	return v, nil
}

// DecodeJSON parses the text of the response as JSON into v, which
// must be a pointer. The response must have been read.
func (r *Response) DecodeJSON(v interface{}) error {
	t, err := r.Text()
	if err != nil {
		return err
	}
	if err = json.Unmarshal([]byte(t), v); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// RaiseForStatus returns an *HTTPResponseError if the status code is
// 400 or above, and nil otherwise.
func (r *Response) RaiseForStatus() error {
	if r.StatusCode >= 400 {
		return &HTTPResponseError{Response: r}
	}
	return nil
}

func (r *Response) status() string {
	return strings.TrimSpace(fmt.Sprintf("%d %s", r.StatusCode, r.Reason))
}

// String returns a short description of the response.
func (r *Response) String() string {
	if r.ContentType != "" {
		return fmt.Sprintf("<Response: %s, Content-Type: %s>", r.status(), r.ContentType)
	}
	return fmt.Sprintf("<Response: %s>", r.status())
}

type responseStream struct {
	r *Response
}

func (s *responseStream) Read(p []byte) (int, error) {
	if s.r.streamConsumed {
		return 0, io.EOF
	}
	if s.r.closed {
		return 0, ErrStreamClosed
	}
	n, err := s.r.body.Read(p)
	if err == io.EOF {
		if cerr := s.r.closeStream(); cerr != nil {
			return n, cerr
		}
	}
	return n, err
}

func (s *responseStream) Close() error {
	return s.r.Close()
}
