// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gogama/corehttp/rest"
)

// ErrInsecureAuth is returned when a bearer token would be sent over a
// connection that is not protected by TLS.
var ErrInsecureAuth = errors.New("corehttp/policy: bearer token authentication requires https")

// A TokenSource supplies bearer tokens. Obtaining, caching and
// refreshing tokens is up to the implementation.
//
// Implementations of TokenSource must be safe for concurrent use by
// multiple goroutines.
type TokenSource interface {
	Token(ctx context.Context, scopes ...string) (string, error)
}

// The TokenSourceFunc type is an adapter to allow the use of ordinary
// functions as token sources.
type TokenSourceFunc func(ctx context.Context, scopes ...string) (string, error)

// Token calls f(ctx, scopes...).
func (f TokenSourceFunc) Token(ctx context.Context, scopes ...string) (string, error) {
	return f(ctx, scopes...)
}

// StaticToken returns a TokenSource which always supplies token.
func StaticToken(token string) TokenSource {
	return TokenSourceFunc(func(context.Context, ...string) (string, error) {
		return token, nil
	})
}

// BearerTokenPolicy authorizes each attempt with a bearer token from a
// TokenSource. It sits after the retry policy, so every attempt asks
// the source again and an expired token is never resent.
type BearerTokenPolicy struct {
	Source TokenSource
	Scopes []string
	// AllowHTTP permits sending the token over plain http.
	AllowHTTP bool
}

// NewBearerTokenPolicy returns a policy authorizing requests with
// tokens for scopes from src.
func NewBearerTokenPolicy(src TokenSource, scopes ...string) *BearerTokenPolicy {
	if src == nil {
		panic("corehttp/policy: nil token source")
	}
	return &BearerTokenPolicy{Source: src, Scopes: scopes}
}

// Do implements Policy.
func (p *BearerTokenPolicy) Do(req *rest.Request, next Next) (*Envelope, error) {
	if !p.AllowHTTP {
		u, err := url.Parse(req.URL())
		if err != nil || !strings.EqualFold(u.Scheme, "https") {
			return nil, ErrInsecureAuth
		}
	}
	tok, err := p.Source.Token(req.Context(), p.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("corehttp/policy: failed to obtain token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return next(req)
}
