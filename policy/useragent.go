// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gogama/corehttp/rest"
)

// Version is the library version reported in the default User-Agent.
const Version = "1.0.0"

// DefaultUserAgent is the User-Agent sent when no other is configured.
var DefaultUserAgent = fmt.Sprintf("corehttp-go/%s (%s; %s; %s)", Version,
	runtime.Version(), runtime.GOOS, runtime.GOARCH)

// UserAgentPolicy sets the User-Agent header.
//
// If the request has no User-Agent, or Overwrite is true, the header is
// set to the policy's user agent. Otherwise the policy's user agent is
// prepended to the caller's.
type UserAgentPolicy struct {
	UserAgent string
	Overwrite bool
}

// NewUserAgentPolicy returns a policy sending DefaultUserAgent prefixed
// by the application id and any extra product tokens, all separated by
// spaces. Empty strings are skipped.
func NewUserAgentPolicy(appID string, extra ...string) *UserAgentPolicy {
	parts := make([]string, 0, 2+len(extra))
	if appID != "" {
		parts = append(parts, appID)
	}
	for _, e := range extra {
		if e != "" {
			parts = append(parts, e)
		}
	}
	parts = append(parts, DefaultUserAgent)
	return &UserAgentPolicy{UserAgent: strings.Join(parts, " ")}
}

// Do implements Policy.
func (p *UserAgentPolicy) Do(req *rest.Request, next Next) (*Envelope, error) {
	ua := p.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	if existing, ok := req.Header.Lookup("User-Agent"); ok && !p.Overwrite {
		if !strings.HasPrefix(existing, ua) {
			req.Header.Set("User-Agent", ua+" "+existing)
		}
	} else {
		req.Header.Set("User-Agent", ua)
	}
	return next(req)
}
