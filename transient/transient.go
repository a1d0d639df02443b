// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"io"
	"syscall"

	"golang.org/x/net/http2"
)

// A Category is the transience category of an error returned while
// sending a request, as reported by Categorize.
//
// Not means a new attempt is very unlikely to succeed. Every other
// category means a new attempt has some prospect of success.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout: the error or one of its
	// causes has a Timeout method reporting true.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (syscall.ECONNREFUSED). The service may still be starting up.
	ConnRefused
	// ConnReset indicates the remote host reset an active connection
	// (syscall.ECONNRESET). This is common behind load balancers and
	// during careless deployments.
	ConnReset
	// ConnAborted indicates the local stack aborted the connection
	// (syscall.ECONNABORTED) or the peer closed it mid-write
	// (syscall.EPIPE).
	ConnAborted
	// Truncated indicates the connection ended before a complete
	// response arrived (io.ErrUnexpectedEOF).
	Truncated
	// GoAway indicates an HTTP/2 server sent GOAWAY before processing
	// the request.
	GoAway
)

var categoryNames = [...]string{"Not", "Timeout", "ConnRefused", "ConnReset", "ConnAborted", "Truncated", "GoAway"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Categorize returns the transience category of err. A nil error and an
// error which is not transient both produce Not.
//
// Categorize inspects the whole chain of wrapped causes. It never
// consults a Temporary method, whose meaning is unclear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		case syscall.ECONNABORTED, syscall.EPIPE:
			return ConnAborted
		}
	}

	var goAway http2.GoAwayError
	if errors.As(err, &goAway) {
		return GoAway
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return Truncated
	}

	return Not
}

// Is reports whether err is transient, that is whether Categorize
// returns anything other than Not.
func Is(err error) bool {
	return Categorize(err) != Not
}

type hasTimeout interface {
	Timeout() bool
}
