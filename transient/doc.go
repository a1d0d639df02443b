// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors returned by a transport as
// transient or not. The retry package uses it to decide whether a
// failed attempt is worth repeating, and the metrics package uses the
// category names to label error counts.
package transient
