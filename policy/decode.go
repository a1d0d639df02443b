// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gogama/corehttp/rest"
	"github.com/hashicorp/go-multierror"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// DefaultAcceptEncoding lists the content codings ContentDecodePolicy
// can decode.
const DefaultAcceptEncoding = "gzip, deflate, zstd"

// ContentDecodePolicy asks servers for compressed responses and
// transparently decompresses them. A decoded response loses its
// Content-Encoding and Content-Length headers, as neither describes the
// decoded body.
//
// Responses with a coding the policy does not know, or with several
// stacked codings, are passed through untouched.
type ContentDecodePolicy struct {
	// AcceptEncoding is sent when the request does not set its own
	// Accept-Encoding header. If empty, DefaultAcceptEncoding is sent.
	AcceptEncoding string
}

// Do implements Policy.
func (p *ContentDecodePolicy) Do(req *rest.Request, next Next) (*Envelope, error) {
	ae := p.AcceptEncoding
	if ae == "" {
		ae = DefaultAcceptEncoding
	}
	req.Header.SetDefault("Accept-Encoding", ae)
	env, err := next(req)
	if err != nil {
		return nil, err
	}
	resp := env.Response
	enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	if !canDecode(enc) || env.Request.Method() == "HEAD" || resp.StatusCode == 204 || resp.StatusCode == 304 {
		return env, nil
	}
	err = resp.WrapStream(func(rc io.ReadCloser) io.ReadCloser {
		return &decodingBody{src: rc, enc: enc}
	})
	if err != nil {
		return env, nil
	}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	return env, nil
}

func canDecode(enc string) bool {
	switch enc {
	case "gzip", "x-gzip", "deflate", "zstd":
		return true
	default:
		return false
	}
}

// decodingBody creates its decoder on first read, so that nothing is
// read from the network before the body is consumed.
type decodingBody struct {
	src io.ReadCloser
	enc string
	r   io.ReadCloser
	err error
}

func (b *decodingBody) Read(p []byte) (int, error) {
	if b.r == nil && b.err == nil {
		r, err := newDecoder(b.enc, b.src)
		switch {
		case err == io.EOF:
			b.err = err
		case err != nil:
			b.err = fmt.Errorf("corehttp/policy: invalid %s response body: %w", b.enc, err)
		default:
			b.r = r
		}
	}
	if b.err != nil {
		return 0, b.err
	}
	return b.r.Read(p)
}

// Close always closes the source, even if closing the decoder fails.
func (b *decodingBody) Close() error {
	var result *multierror.Error
	if b.r != nil {
		if err := b.r.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := b.src.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func newDecoder(enc string, src io.Reader) (io.ReadCloser, error) {
	switch enc {
	case "gzip", "x-gzip":
		return gzip.NewReader(src)
	case "zstd":
		d, err := zstd.NewReader(src)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	default:
		// Servers send "deflate" both zlib wrapped, as the RFC says,
		// and raw.
		br := bufio.NewReader(src)
		hdr, err := br.Peek(2)
		if err != nil && len(hdr) == 0 {
			return nil, err
		}
		if len(hdr) == 2 && isZlibHeader(hdr[0], hdr[1]) {
			return zlib.NewReader(br)
		}
		return flate.NewReader(br), nil
	}
}

func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
