// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports Prometheus metrics about pipeline traffic.
//
//	c := metrics.NewCollector(prometheus.NewRegistry())
//	client, err := corehttp.NewClient(baseURL, &corehttp.ClientOptions{
//		PerRetryPolicies: []policy.Policy{c.Policy()},
//	})
package metrics
