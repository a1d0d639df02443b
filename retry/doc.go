// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides the pipeline stage that retries failed
// attempts, and flexible rules for deciding whether to retry and how
// long to wait before retrying.
//
// A *Policy is constructed using NewPolicy by providing a
// decision-maker, Decider, and a wait time calculator, Waiter. Both
// Decider and Waiter have constructors for common use cases, so that a
// useful policy can be quickly assembled:
//
//	decider := retry.Times(3).
//		And(retry.Before(5 * time.Second)).
//		And(retry.Rewindable).
//		And(retry.StatusCode(500).Or(retry.TransientErr))
//	waiter := retry.RespectRetryAfter(retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, time.Now()), 0)
//	p := retry.NewPolicy(decider, waiter)
//
// A *Policy is a policy.Retrier: in a pipeline, the policies after it
// run once per attempt.
package retry
