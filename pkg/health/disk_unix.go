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

//go:build !windows
// +build !windows

package health

import (
	"fmt"
	"syscall"
)

const gib = 1 << 30

// getDiskUsage returns totalGB, freeGB and usedPercent of the filesystem
// holding path. Free space is what an unprivileged process can still use.
func getDiskUsage(path string) (float64, float64, float64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get disk stats for %s: %w", path, err)
	}

	bsize := uint64(stat.Bsize)
	totalBytes := stat.Blocks * bsize
	availBytes := stat.Bavail * bsize
	usedBytes := totalBytes - stat.Bfree*bsize
	if totalBytes == 0 {
		return 0, 0, 0, fmt.Errorf("filesystem of %s reports zero size", path)
	}

	return float64(totalBytes) / gib, float64(availBytes) / gib, float64(usedBytes) / float64(totalBytes) * 100, nil
}
