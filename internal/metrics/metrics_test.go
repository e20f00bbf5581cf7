/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("/api/alerts", "fallback"))
	RequestsTotal.WithLabelValues("/api/alerts", "fallback").Inc()
	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("/api/alerts", "fallback"))
	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}

	RemoteFailuresTotal.WithLabelValues("unavailable").Inc()
	if testutil.ToFloat64(RemoteFailuresTotal.WithLabelValues("unavailable")) < 1 {
		t.Error("failure counter not incremented")
	}
}
