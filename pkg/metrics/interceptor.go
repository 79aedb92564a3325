// Copyright 2025 The axfor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import "time"

// RequestObserver wraps protocol request handling with metrics collection.
type RequestObserver struct {
	metrics *Metrics
}

// NewRequestObserver creates an observer; m may be nil.
func NewRequestObserver(m *Metrics) *RequestObserver {
	return &RequestObserver{metrics: m}
}

// Observe runs handle and records its duration under command and the result
// label handle returns ("ok", "error", ...).
func (ro *RequestObserver) Observe(command string, handle func() (string, string)) string {
	if ro == nil || ro.metrics == nil {
		resp, _ := handle()
		return resp
	}

	ro.metrics.RequestInFlight.Inc()
	defer ro.metrics.RequestInFlight.Dec()

	start := time.Now()
	resp, result := handle()
	ro.metrics.RecordRequest(command, result, time.Since(start))
	return resp
}
