// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a new time-ordered span id (a UUIDv7 string).
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
