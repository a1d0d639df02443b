// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package policy defines the Policy interface implemented by every
// pipeline stage, and provides the built-in policies a client chain is
// assembled from.
//
// A policy wraps the rest of the pipeline:
//
//     p := policy.Func(func(req *rest.Request, next policy.Next) (*policy.Envelope, error) {
//         req.Header.Set("X-Tenant", "blue")
//         env, err := next(req)
//         if err == nil {
//             log.Println(env.Response.StatusCode)
//         }
//         return env, err
//     })
//
// Simpler extensions which only look at the request on the way out and
// the response on the way back can be written as Hooks and adapted with
// FromHooks. Handlers for the CustomHookPolicy follow the same event
// plug-in model, and can be attached either to the policy or to a
// single request.
//
// The retry policy lives in package retry. It implements Retrier, the
// marker the client chain builder uses to place per-retry policies.
package policy
