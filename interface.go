// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package corehttp

import (
	"io"
	"net/url"

	"github.com/gogama/corehttp/rest"
)

// Sender is the interface that wraps the basic SendRequest method.
//
// SendRequest runs a request through a pipeline and returns the
// response (and error, if any). Client implements the Sender interface,
// and any other Sender implementation must behave substantially the
// same as Client.SendRequest.
//
// Any Sender can be converted into an Executor via the Inflate
// function.
type Sender interface {
	SendRequest(req *rest.Request, stream bool) (*rest.Response, error)
}

// Getter is the interface that wraps the basic Get method.
//
// Get sends a GET to the specified URL and returns the read response
// (and error, if any).
//
// Any Sender can be used to emulate a Getter via the Get function.
type Getter interface {
	Get(url string) (*rest.Response, error)
}

// Header is the interface that wraps the basic Head method.
//
// Head sends a HEAD to the specified URL and returns the response (and
// error, if any).
//
// Any Sender can be used to emulate a Header via the Head function.
type Header interface {
	Head(url string) (*rest.Response, error)
}

// Poster is the interface that wraps the basic Post method.
//
// Post sends a POST to the specified URL with the given content type
// and body, and returns the read response (and error, if any). The body
// may be nil for an empty body, or any of the content types accepted by
// rest.RequestOptions: string, []byte, [][]byte or io.Reader.
//
// Any Sender can be used to emulate a Poster via the Post function.
type Poster interface {
	Post(url, contentType string, body interface{}) (*rest.Response, error)
}

// JSONPoster is the interface that wraps the basic PostJSON method.
//
// PostJSON sends a POST to the specified URL with v encoded as JSON as
// the body, and returns the read response (and error, if any).
//
// Any Sender can be used to emulate a JSONPoster via the PostJSON
// function.
type JSONPoster interface {
	PostJSON(url string, v interface{}) (*rest.Response, error)
}

// FormPoster is the interface that wraps the basic PostForm method.
//
// PostForm sends a POST to the specified URL with data's keys and values
// URL-encoded as the body, and returns the read response (and error, if
// any).
//
// Any Sender can be used to emulate a FormPoster via the PostForm
// function.
type FormPoster interface {
	PostForm(url string, data url.Values) (*rest.Response, error)
}

// Executor is the interface that groups the basic SendRequest, Get,
// Head, Post, PostJSON, PostForm, and Close methods.
//
// Any Sender can be converted into an Executor via the Inflate function.
type Executor interface {
	Sender
	Getter
	Header
	Poster
	JSONPoster
	FormPoster
	io.Closer
}

// Get uses the specified Sender to issue a GET to the specified URL.
//
// To send a request with custom headers, use rest.NewRequest and
// s.SendRequest.
func Get(s Sender, url string) (*rest.Response, error) {
	return send(s, "GET", url, nil)
}

// Head uses the specified Sender to issue a HEAD to the specified URL.
func Head(s Sender, url string) (*rest.Response, error) {
	return send(s, "HEAD", url, nil)
}

// Post uses the specified Sender to issue a POST to the specified URL.
// The Content-Type header is set to contentType unless it is empty.
func Post(s Sender, url, contentType string, body interface{}) (*rest.Response, error) {
	opts := &rest.RequestOptions{Content: body}
	if contentType != "" {
		opts.Header = rest.NewHeader("Content-Type", contentType)
	}
	return send(s, "POST", url, opts)
}

// PostJSON uses the specified Sender to issue a POST to the specified
// URL with v encoded as JSON.
func PostJSON(s Sender, url string, v interface{}) (*rest.Response, error) {
	return send(s, "POST", url, &rest.RequestOptions{JSON: v})
}

// PostForm uses the specified Sender to issue a POST to the specified
// URL, with data's keys and values URL-encoded as the request body.
//
// The Content-Type header is set to application/x-www-form-urlencoded.
func PostForm(s Sender, url string, data url.Values) (*rest.Response, error) {
	return send(s, "POST", url, &rest.RequestOptions{Data: data})
}

func send(s Sender, method, url string, opts *rest.RequestOptions) (*rest.Response, error) {
	req, err := rest.NewRequest(method, url, opts)
	if err != nil {
		return nil, err
	}
	return s.SendRequest(req, false)
}

// Get issues a GET to url, which is resolved against the base URL.
func (c *Client) Get(url string) (*rest.Response, error) {
	return Get(c, c.FormatURL(url))
}

// Head issues a HEAD to url, which is resolved against the base URL.
func (c *Client) Head(url string) (*rest.Response, error) {
	return Head(c, c.FormatURL(url))
}

// Post issues a POST to url, which is resolved against the base URL.
func (c *Client) Post(url, contentType string, body interface{}) (*rest.Response, error) {
	return Post(c, c.FormatURL(url), contentType, body)
}

// PostJSON issues a POST of v as JSON to url, which is resolved against
// the base URL.
func (c *Client) PostJSON(url string, v interface{}) (*rest.Response, error) {
	return PostJSON(c, c.FormatURL(url), v)
}

// PostForm issues a form POST to url, which is resolved against the
// base URL.
func (c *Client) PostForm(url string, data url.Values) (*rest.Response, error) {
	return PostForm(c, c.FormatURL(url), data)
}

// Inflate converts any non-nil Sender into an Executor. This may be
// helpful for interop across library boundaries, i.e. if code that only
// has access to a Sender needs to call a function that requires an
// Executor.
func Inflate(s Sender) Executor {
	if s == nil {
		panic("corehttp: nil sender")
	}

	if e, ok := s.(Executor); ok {
		return e
	}

	return inflated{s}
}

type inflated struct {
	sender Sender
}

func (i inflated) SendRequest(req *rest.Request, stream bool) (*rest.Response, error) {
	return i.sender.SendRequest(req, stream)
}

func (i inflated) Get(url string) (*rest.Response, error) {
	return Get(i.sender, url)
}

func (i inflated) Head(url string) (*rest.Response, error) {
	return Head(i.sender, url)
}

func (i inflated) Post(url, contentType string, body interface{}) (*rest.Response, error) {
	return Post(i.sender, url, contentType, body)
}

func (i inflated) PostJSON(url string, v interface{}) (*rest.Response, error) {
	return PostJSON(i.sender, url, v)
}

func (i inflated) PostForm(url string, data url.Values) (*rest.Response, error) {
	return PostForm(i.sender, url, data)
}

func (i inflated) Close() error {
	if c, ok := i.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
