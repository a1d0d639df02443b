// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package rest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResponseNotRead is matched by the error returned when response
	// content is accessed before the response has been read.
	ErrResponseNotRead = errors.New("corehttp/rest: response content not read")

	// ErrStreamConsumed is returned when the response stream is requested
	// a second time, after it was already handed out or read.
	ErrStreamConsumed = errors.New("corehttp/rest: response stream already consumed")

	// ErrStreamClosed is returned when the response stream is requested
	// after the response was closed without being read.
	ErrStreamClosed = errors.New("corehttp/rest: response stream closed before read")

	// ErrUnknownOption is matched by the error returned when a request
	// is constructed with an unrecognized keyword option.
	ErrUnknownOption = errors.New("corehttp/rest: unrecognized request option")

	// ErrBodyConsumed is returned when a one-shot stream body is
	// requested more than once.
	ErrBodyConsumed = errors.New("corehttp/rest: stream body already consumed")
)

// A ResponseNotReadError reports access to the content of a response
// which has not been read yet. Call Response.Read first.
type ResponseNotReadError struct {
	Response *Response
}

func (err *ResponseNotReadError) Error() string {
	return fmt.Sprintf("corehttp/rest: content of response %s not read; call Read first", err.Response)
}

// Is reports whether target is ErrResponseNotRead.
func (err *ResponseNotReadError) Is(target error) bool {
	return target == ErrResponseNotRead
}

// An HTTPResponseError is returned by Response.RaiseForStatus when the
// response carries an error status code.
type HTTPResponseError struct {
	Response *Response
}

func (err *HTTPResponseError) Error() string {
	return fmt.Sprintf("corehttp/rest: operation returned an invalid status %q", err.Response.status())
}

// StatusCode returns the status code of the offending response.
func (err *HTTPResponseError) StatusCode() int {
	return err.Response.StatusCode
}

// A DecodeError reports a response body which could not be decoded as
// JSON.
type DecodeError struct {
	Err error
}

func (err *DecodeError) Error() string {
	return "corehttp/rest: failed to decode response body as JSON: " + err.Err.Error()
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}

// An OptionError lists keyword options that NewRequestFromMap did not
// recognize.
type OptionError struct {
	Keys []string
}

func (err *OptionError) Error() string {
	return fmt.Sprintf("corehttp/rest: unrecognized request options '%s'", strings.Join(err.Keys, "', '"))
}

// Is reports whether target is ErrUnknownOption.
func (err *OptionError) Is(target error) bool {
	return target == ErrUnknownOption
}
