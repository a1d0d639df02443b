// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"net/url"
	"strconv"
	"time"

	"github.com/gogama/corehttp/policy"
	"github.com/gogama/corehttp/rest"
	"github.com/gogama/corehttp/transient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "corehttp"

// A Collector records Prometheus metrics about requests sent through a
// pipeline. It is safe for concurrent use.
//
// Place Collector.Policy as a per-call policy to measure whole requests,
// retries included, or as a per-retry policy to measure each attempt.
type Collector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
	errorsTotal      *prometheus.CounterVec

	timeNow func() time.Time
}

// NewCollector creates a Collector and registers its metrics with reg.
// A nil reg means prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Collector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests that got a response.",
			},
			[]string{"method", "host", "code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "request_duration_seconds",
				Help:      "Time from sending an HTTP request to getting its response or error.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "host"},
		),
		requestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently in flight.",
			},
			[]string{"method", "host"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "errors_total",
				Help:      "Total number of HTTP requests that failed without a response, by transience category.",
			},
			[]string{"method", "host", "category"},
		),
		timeNow: time.Now,
	}
}

// Policy returns a pipeline policy which records metrics for every
// request passing through it.
func (c *Collector) Policy() policy.Policy {
	return policy.Func(c.do)
}

func (c *Collector) do(req *rest.Request, next policy.Next) (*policy.Envelope, error) {
	method, host := req.Method(), hostOf(req.URL())
	inFlight := c.requestsInFlight.WithLabelValues(method, host)
	inFlight.Inc()
	defer inFlight.Dec()

	t0 := c.timeNow()
	env, err := next(req)
	c.requestDuration.WithLabelValues(method, host).Observe(c.timeNow().Sub(t0).Seconds())

	if err != nil {
		c.errorsTotal.WithLabelValues(method, host, transient.Categorize(err).String()).Inc()
		return env, err
	}
	c.requestsTotal.WithLabelValues(method, host, strconv.Itoa(env.Response.StatusCode)).Inc()
	return env, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
