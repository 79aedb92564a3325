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

package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock checker for testing
type mockChecker struct {
	name   string
	status Status
	msg    string
	err    error
	calls  int
}

func (mc *mockChecker) Name() string {
	return mc.name
}

func (mc *mockChecker) Check(ctx context.Context) (Status, string, error) {
	mc.calls++
	return mc.status, mc.msg, mc.err
}

func TestHealthServer_Check(t *testing.T) {
	hs := NewHealthServer(zap.NewNop(), 0)

	hs.RegisterChecker(&mockChecker{name: "store", status: StatusHealthy, msg: "2 surveys, 1 votes"})
	hs.RegisterChecker(&mockChecker{name: "data_dir", status: StatusHealthy, msg: "writable"})

	report := hs.Check(context.Background())

	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, 2, len(report.Checks))
	assert.Equal(t, "2 surveys, 1 votes", report.Checks["store"].Message)
}

func TestHealthServer_Check_Unhealthy(t *testing.T) {
	hs := NewHealthServer(zap.NewNop(), 0)

	hs.RegisterChecker(&mockChecker{name: "store", status: StatusHealthy})
	hs.RegisterChecker(&mockChecker{name: "data_dir", status: StatusHealthy, err: fmt.Errorf("read-only file system")})

	report := hs.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, StatusHealthy, report.Checks["store"].Status)
	assert.Equal(t, StatusUnhealthy, report.Checks["data_dir"].Status)
	assert.Equal(t, "read-only file system", report.Checks["data_dir"].Message)
}

func TestHealthServer_Check_Degraded(t *testing.T) {
	hs := NewHealthServer(zap.NewNop(), 0)

	hs.RegisterChecker(&mockChecker{name: "store", status: StatusHealthy})
	hs.RegisterChecker(&mockChecker{name: "disk", status: StatusDegraded, msg: "disk space low"})

	report := hs.Check(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, StatusDegraded, report.Checks["disk"].Status)
}

func TestHealthServer_Cache(t *testing.T) {
	hs := NewHealthServer(zap.NewNop(), time.Minute)
	mc := &mockChecker{name: "store", status: StatusHealthy}
	hs.RegisterChecker(mc)

	hs.Check(context.Background())
	hs.Check(context.Background())
	assert.Equal(t, 1, mc.calls)

	// Registering a checker drops the cached report.
	hs.RegisterChecker(&mockChecker{name: "disk", status: StatusHealthy})
	report := hs.Check(context.Background())
	assert.Equal(t, 2, mc.calls)
	assert.Len(t, report.Checks, 2)
}

func TestHealthServer_HTTPHandler(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		wantCode int
	}{
		{"healthy", StatusHealthy, http.StatusOK},
		{"degraded", StatusDegraded, http.StatusOK},
		{"unhealthy", StatusUnhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthServer(zap.NewNop(), 0)
			hs.RegisterChecker(&mockChecker{name: "store", status: tt.status})

			w := httptest.NewRecorder()
			hs.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var report HealthReport
			require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
			assert.Equal(t, tt.status, report.Status)
		})
	}
}

func TestStoreChecker(t *testing.T) {
	ok := NewStoreChecker("store", func(ctx context.Context) (string, error) { return "3 items", nil })
	status, msg, err := ok.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, status)
	assert.Equal(t, "3 items", msg)

	bad := NewStoreChecker("store", func(ctx context.Context) (string, error) { return "", fmt.Errorf("closed") })
	status, _, err = bad.Check(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StatusUnhealthy, status)
}

func TestWritableDirChecker(t *testing.T) {
	dir := t.TempDir()
	wc := NewWritableDirChecker("data_dir", dir)

	status, _, err := wc.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, status)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be removed")

	missing := NewWritableDirChecker("data_dir", filepath.Join(dir, "missing"))
	status, _, err = missing.Check(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StatusUnhealthy, status)
}

func TestDiskSpaceChecker(t *testing.T) {
	dc := NewDiskSpaceChecker("disk", t.TempDir(), 0, 100)
	status, msg, err := dc.Check(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, StatusUnhealthy, status)
	assert.NotEmpty(t, msg)
}
