// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for setting the timeout of each
// attempt the transport makes to send a request, including attempts
// made on retry. The transport records every attempt's outcome on the
// request, so a policy such as Adaptive can react to earlier timeouts.
package timeout
