// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"github.com/gogama/corehttp/rest"
)

// An Exchange is the state shared with event handlers.
type Exchange struct {
	Request  *rest.Request
	Response *rest.Response
	Err      error
}

// A HandlerGroup is a group of event handler chains which can be
// installed in a CustomHookPolicy, or attached to a single request with
// AttachHandlers.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack adds an event handler to the back of the event handler chain
// for a specific event type.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("corehttp/policy: nil handler")
	}
	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}
	g.handlers[evt] = append(g.handlers[evt], h)
}

func (g *HandlerGroup) run(evt Event, x *Exchange) {
	if g == nil {
		return
	}
	i := int(evt)
	if i < len(g.handlers) {
		for _, h := range g.handlers[i] {
			h.Handle(evt, x)
		}
	}
}

// A Handler handles the occurrence of an event during an exchange.
type Handler interface {
	Handle(Event, *Exchange)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers.
type HandlerFunc func(Event, *Exchange)

// Handle calls f(evt, x).
func (f HandlerFunc) Handle(evt Event, x *Exchange) {
	f(evt, x)
}

type handlersKey struct{}

// AttachHandlers installs g for req alone. A CustomHookPolicy runs g
// after its own handlers.
func AttachHandlers(req *rest.Request, g *HandlerGroup) {
	req.SetValue(handlersKey{}, g)
}

// CustomHookPolicy runs caller supplied event handlers around the rest
// of the pipeline. The default chain places it after the retry policy,
// so the handlers see every attempt.
type CustomHookPolicy struct {
	Handlers *HandlerGroup
}

// Do implements Policy.
func (p *CustomHookPolicy) Do(req *rest.Request, next Next) (*Envelope, error) {
	perReq, _ := req.Value(handlersKey{}).(*HandlerGroup)
	x := &Exchange{Request: req}
	p.run(perReq, BeforeSend, x)
	env, err := next(x.Request)
	if err != nil {
		x.Err = err
		p.run(perReq, AfterError, x)
		return nil, err
	}
	x.Request, x.Response = env.Request, env.Response
	p.run(perReq, AfterResponse, x)
	return env, nil
}

func (p *CustomHookPolicy) run(perReq *HandlerGroup, evt Event, x *Exchange) {
	p.Handlers.run(evt, x)
	perReq.run(evt, x)
}
