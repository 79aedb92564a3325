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

//go:build windows
// +build windows

package health

import "errors"

var errDiskUsageUnsupported = errors.New("disk usage not supported on windows")

// getDiskUsage is not implemented on Windows; DiskSpaceChecker reports degraded.
func getDiskUsage(path string) (float64, float64, float64, error) {
	return 0, 0, 0, errDiskUsageUnsupported
}
