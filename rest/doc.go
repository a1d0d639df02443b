// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package rest contains the request and response types that flow through
a corehttp pipeline: Request (what to send), Response (what came back)
and Header (an ordered, case-insensitive header collection shared by
both).

Create a request, choosing the body representation with RequestOptions:

	r, err := rest.NewRequest("POST", "https://example.com/items", &rest.RequestOptions{
		Params: url.Values{"api-version": {"2021-01-01"}},
		JSON:   map[string]interface{}{"name": "widget"},
	})
	...

Headers implied by the body, such as Content-Type and Content-Length,
are computed at construction but never override headers given by the
caller.

A Response begins unread. Its content is available only after Read,
which buffers the whole body and releases the underlying connection:

	resp, err := client.SendRequest(r, true)
	...
	defer resp.Close()
	if _, err = resp.Read(); err != nil {
		...
	}
	text, err := resp.Text()

A response obtained without streaming has already been read and closed
by the client.
*/
package rest
