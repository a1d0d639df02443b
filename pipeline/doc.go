// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package pipeline runs requests through a chain of policies in front
// of a transport.
//
// Policies nest like middleware. For a pipeline built as
//
//	p := pipeline.New(t, a, b, c)
//
// a request passes through a, b and c on the way out, is sent once by
// t, and the envelope passes back through c, b and a. Any policy may
// short-circuit by returning without calling next, and a retry policy
// may call next more than once.
package pipeline
