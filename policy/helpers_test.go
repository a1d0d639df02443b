// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"context"
	"io"
	"io/ioutil"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/bassosimone/slogstub"
	"github.com/gogama/corehttp/rest"
	"github.com/stretchr/testify/require"
)

func newCapturingLogger() (*slog.Logger, *[]slog.Record) {
	var records []slog.Record
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return true
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			records = append(records, record)
			return nil
		},
	}
	return slog.New(handler), &records
}

func attrsOf(r slog.Record) map[string]slog.Value {
	m := make(map[string]slog.Value)
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	return m
}

func newRequest(t *testing.T, method, url string, opts *rest.RequestOptions) *rest.Request {
	req, err := rest.NewRequest(method, url, opts)
	require.NoError(t, err)
	return req
}

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

// stubResponse builds an unread response to req.
func stubResponse(req *rest.Request, status int, header http.Header, body string) *rest.Response {
	if header == nil {
		header = http.Header{}
	}
	return rest.NewResponse(req, &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       ioutil.NopCloser(strings.NewReader(body)),
	})
}

// respond returns a terminal Next answering every request the same way.
func respond(status int, header http.Header, body string) Next {
	return func(req *rest.Request) (*Envelope, error) {
		return &Envelope{Request: req, Response: stubResponse(req, status, header, body)}, nil
	}
}

func fail(err error) Next {
	return func(*rest.Request) (*Envelope, error) {
		return nil, err
	}
}
