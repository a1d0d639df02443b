// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gogama/corehttp/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hop struct {
	status   int
	location string
}

// redirector answers each request with the next hop, or 200 once the
// hops run out, and records what was sent.
type redirector struct {
	hops   []hop
	sent   []*rest.Request
	bodies []*trackedBody
}

func (r *redirector) next(req *rest.Request) (*Envelope, error) {
	i := len(r.sent)
	r.sent = append(r.sent, req)
	body := &trackedBody{Reader: strings.NewReader("")}
	r.bodies = append(r.bodies, body)
	h := http.Header{}
	status := 200
	if i < len(r.hops) {
		status = r.hops[i].status
		if r.hops[i].location != "" {
			h.Set("Location", r.hops[i].location)
		}
	}
	return &Envelope{Request: req, Response: rest.NewResponse(req, &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       body,
	})}, nil
}

func TestRedirectPolicy(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		opts       *rest.RequestOptions
		hops       []hop
		wantSent   int
		wantStatus int
		wantMethod string
		wantURL    string
		wantBody   bool
	}{
		{
			name:       "no redirect",
			method:     "GET",
			wantSent:   1,
			wantStatus: 200,
			wantMethod: "GET",
			wantURL:    "https://a.com/start",
		},
		{
			name:       "relative 302 GET",
			method:     "GET",
			hops:       []hop{{302, "/next"}},
			wantSent:   2,
			wantStatus: 200,
			wantMethod: "GET",
			wantURL:    "https://a.com/next",
		},
		{
			name:       "301 POST not followed",
			method:     "POST",
			opts:       &rest.RequestOptions{JSON: 1},
			hops:       []hop{{301, "/next"}},
			wantSent:   1,
			wantStatus: 301,
			wantMethod: "POST",
			wantURL:    "https://a.com/start",
			wantBody:   true,
		},
		{
			name:       "303 POST becomes GET",
			method:     "POST",
			opts:       &rest.RequestOptions{JSON: 1},
			hops:       []hop{{303, "https://b.com/done"}},
			wantSent:   2,
			wantStatus: 200,
			wantMethod: "GET",
			wantURL:    "https://b.com/done",
		},
		{
			name:       "303 HEAD stays HEAD",
			method:     "HEAD",
			hops:       []hop{{303, "/x"}},
			wantSent:   2,
			wantStatus: 200,
			wantMethod: "HEAD",
			wantURL:    "https://a.com/x",
		},
		{
			name:       "307 keeps method and body",
			method:     "PUT",
			opts:       &rest.RequestOptions{Content: "data"},
			hops:       []hop{{307, "/a"}, {308, "/b"}},
			wantSent:   3,
			wantStatus: 200,
			wantMethod: "PUT",
			wantURL:    "https://a.com/b",
			wantBody:   true,
		},
		{
			name:   "307 with stream body not followed",
			method: "PUT",
			opts: &rest.RequestOptions{
				Content: io.MultiReader(strings.NewReader("s")),
			},
			hops:       []hop{{307, "/a"}},
			wantSent:   1,
			wantStatus: 307,
			wantMethod: "PUT",
			wantURL:    "https://a.com/start",
			wantBody:   true,
		},
		{
			name:       "missing Location",
			method:     "GET",
			hops:       []hop{{302, ""}},
			wantSent:   1,
			wantStatus: 302,
			wantMethod: "GET",
			wantURL:    "https://a.com/start",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			r := &redirector{hops: testCase.hops}
			req := newRequest(t, testCase.method, "https://a.com/start", testCase.opts)
			env, err := (&RedirectPolicy{}).Do(req, r.next)
			require.NoError(t, err)
			require.Len(t, r.sent, testCase.wantSent)
			assert.Equal(t, testCase.wantStatus, env.Response.StatusCode)
			assert.Same(t, r.sent[len(r.sent)-1], env.Request)
			assert.Equal(t, testCase.wantMethod, env.Request.Method())
			assert.Equal(t, testCase.wantURL, env.Request.URL())
			assert.Equal(t, testCase.wantBody, env.Request.Content() != nil)
			for i, b := range r.bodies {
				assert.Equal(t, i < len(r.bodies)-1, b.closed, "response %d", i)
			}
		})
	}
}

func TestRedirectPolicy_Authorization(t *testing.T) {
	r := &redirector{hops: []hop{{302, "/same"}, {302, "https://other.com/"}}}
	req := newRequest(t, "GET", "https://a.com/", &rest.RequestOptions{
		Header: rest.NewHeader("Authorization", "Bearer secret"),
	})
	_, err := (&RedirectPolicy{}).Do(req, r.next)
	require.NoError(t, err)
	require.Len(t, r.sent, 3)
	assert.Equal(t, "Bearer secret", r.sent[1].Header.Get("Authorization"))
	assert.False(t, r.sent[2].Header.Has("Authorization"))
	assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
}

func TestRedirectPolicy_Limits(t *testing.T) {
	loop := []hop{{302, "/1"}, {302, "/2"}, {302, "/3"}, {302, "/4"}}
	t.Run("too many", func(t *testing.T) {
		r := &redirector{hops: loop}
		env, err := (&RedirectPolicy{MaxRedirects: 2}).Do(newRequest(t, "GET", "https://a.com/", nil), r.next)
		assert.Nil(t, env)
		assert.True(t, errors.Is(err, ErrTooManyRedirects))
		assert.Len(t, r.sent, 3)
		for _, b := range r.bodies {
			assert.True(t, b.closed)
		}
	})
	t.Run("disabled", func(t *testing.T) {
		r := &redirector{hops: loop}
		env, err := (&RedirectPolicy{MaxRedirects: -1}).Do(newRequest(t, "GET", "https://a.com/", nil), r.next)
		require.NoError(t, err)
		assert.Equal(t, 302, env.Response.StatusCode)
		assert.Len(t, r.sent, 1)
	})
	t.Run("logged", func(t *testing.T) {
		logger, records := newCapturingLogger()
		r := &redirector{hops: loop[:1]}
		_, err := (&RedirectPolicy{Logger: logger}).Do(newRequest(t, "GET", "https://a.com/", nil), r.next)
		require.NoError(t, err)
		require.Len(t, *records, 1)
		assert.Equal(t, "redirect", (*records)[0].Message)
		assert.Equal(t, "https://a.com/1", attrsOf((*records)[0])["to"].String())
	})
}

func TestRedirectPolicy_Error(t *testing.T) {
	nextErr := errors.New("down")
	env, err := (&RedirectPolicy{}).Do(newRequest(t, "GET", "https://a.com/", nil), fail(nextErr))
	assert.Nil(t, env)
	assert.Same(t, nextErr, err)
}
