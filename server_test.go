// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package corehttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gogama/corehttp/policy"
	"github.com/gogama/corehttp/rest"
	"github.com/gogama/corehttp/retry"
	"github.com/gogama/corehttp/timeout"
	"github.com/gogama/corehttp/transport"
)

var httpServer = httptest.NewUnstartedServer(http.HandlerFunc(serverHandler))
var httpsServer = httptest.NewUnstartedServer(http.HandlerFunc(serverHandler))
var http2Server = httptest.NewUnstartedServer(http.HandlerFunc(serverHandler))
var servers = []*httptest.Server{httpServer, httpsServer, http2Server}

func TestMain(m *testing.M) {
	httpServer.Start()
	defer httpServer.Close()
	httpsServer.StartTLS()
	defer httpsServer.Close()
	http2Server.EnableHTTP2 = true
	http2Server.StartTLS()
	defer http2Server.Close()
	waitForServerStart(httpServer)
	waitForServerStart(httpsServer)
	waitForServerStart(http2Server)
	os.Exit(m.Run())
}

func waitForServerStart(server *httptest.Server) {
	cl := newServerClient(server,
		retry.NewPolicy(retry.Before(10*time.Second).And(retry.TransientErr), retry.NewFixedWaiter(50*time.Millisecond)),
		timeout.Fixed(2*time.Second))
	req := (&serverInstruction{StatusCode: 200}).toRequest(context.Background(), "POST", server)
	resp, err := cl.SendRequest(req, false)
	if err != nil || resp.StatusCode != 200 {
		panic(fmt.Sprintf("Test server startup failed with response %v and error %v", resp, err))
	}
}

// newServerClient returns a client with an explicit minimal pipeline
// which sends to server.
func newServerClient(server *httptest.Server, retryPolicy *retry.Policy, timeoutPolicy timeout.Policy, extra ...policy.Policy) *Client {
	policies := append([]policy.Policy{retryPolicy}, extra...)
	cl, err := NewClient(server.URL, &ClientOptions{
		Policies: policies,
		Transport: transport.NewHTTPTransport(&transport.Config{
			Doer:          server.Client(),
			TimeoutPolicy: timeoutPolicy,
		}),
	})
	if err != nil {
		panic(err)
	}
	return cl
}

func serverName(server *httptest.Server) string {
	switch server {
	case httpServer:
		return "http"
	case httpsServer:
		return "https"
	case http2Server:
		return "http2"
	default:
		panic("unknown server")
	}
}

type bodyChunk struct {
	Pause time.Duration
	Data  []byte
}

type serverInstruction struct {
	HeaderPause time.Duration
	StatusCode  int
	Header      map[string]string
	Body        []bodyChunk
}

func (i *serverInstruction) toRequest(ctx context.Context, method string, server *httptest.Server) *rest.Request {
	req, err := rest.NewRequestWithContext(ctx, method, server.URL, &rest.RequestOptions{JSON: i})
	if err != nil {
		panic(err)
	}

	return req
}

func (i *serverInstruction) fromRequest(req *http.Request) error {
	b, err := ioutil.ReadAll(req.Body)
	_ = req.Body.Close()

	if err != nil {
		return err
	}

	return json.Unmarshal(b, i)
}

func serverHandler(w http.ResponseWriter, req *http.Request) {
	// Decode the instructions.
	var i serverInstruction
	err := i.fromRequest(req)
	if err != nil {
		w.WriteHeader(400)
		_, _ = io.WriteString(w, fmt.Sprintf("failed to read request: %s", err.Error()))
		return
	}

	// Validate the instruction.
	if i.StatusCode == 0 {
		w.WriteHeader(400)
		_, _ = io.WriteString(w, fmt.Sprintf("bad StatusCode in instruction: %v", i))
		return
	}

	// Get the Flusher, panicking if it's not available.
	f, ok := w.(http.Flusher)
	if !ok {
		panic("w does not implement Flusher")
	}

	// Determine the content length of the response.
	contentLength := 0
	for _, chunk := range i.Body {
		contentLength += len(chunk.Data)
	}

	// Create the response headers.
	header := w.Header()
	header.Set("Content-Length", strconv.Itoa(contentLength))
	for name, value := range i.Header {
		header.Set(name, value)
	}

	// Sleep for the duration indicated by the pause field, to let the
	// client play with timeouts.
	time.Sleep(i.HeaderPause)

	// Return the HTTP response stipulated by the client.
	w.WriteHeader(i.StatusCode)
	f.Flush()

	// Write the response in chunks, pausing across each chunk.
	for _, chunk := range i.Body {
		data := chunk.Data
		pause := chunk.Pause
		ppb := chunk.Pause / time.Duration(len(chunk.Data))

		for i := range data {
			_, err = w.Write(data[i : i+1])
			if err != nil {
				return
			}
			f.Flush()
			time.Sleep(ppb)
			pause -= ppb
		}

		if pause > 0 {
			time.Sleep(pause)
		}
	}
}
