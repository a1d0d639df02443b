// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

// An Event identifies the point in an exchange at which a Handler
// installed in a CustomHookPolicy runs.
type Event int

const (
	// BeforeSend identifies the event that occurs before the request is
	// passed on towards the transport.
	//
	// BeforeSend handlers may change the request header. They may also
	// replace the exchange's Request, in which case the replacement is
	// sent instead.
	BeforeSend Event = iota
	// AfterResponse identifies the event that occurs after a response
	// comes back. The exchange's Request is the request actually sent,
	// which may differ from the original after a redirect.
	//
	// The response is unread. Handlers must not consume its body.
	AfterResponse
	// AfterError identifies the event that occurs when the rest of the
	// pipeline returns an error instead of a response. The exchange's
	// Err is set and its Response is nil.
	AfterError
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel
	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeSend",
	"AfterResponse",
	"AfterError",
}

// Events returns a slice containing all events which can occur in an
// exchange, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeSend,
		AfterResponse,
		AfterError,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
