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

package log

import (
	"time"

	"go.uber.org/zap"
)

func String(key, val string) zap.Field { return zap.String(key, val) }
func Int(key string, val int) zap.Field { return zap.Int(key, val) }
func Bool(key string, val bool) zap.Field { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) zap.Field { return zap.Duration(key, val) }
func Err(err error) zap.Field { return zap.Error(err) }

// Domain fields

// Component names the subsystem emitting the entry.
func Component(name string) zap.Field {
	return zap.String("component", name)
}

// Kind is the item kind ("survey" or "vote").
func Kind(kind string) zap.Field {
	return zap.String("kind", kind)
}

// ItemID is the id of a survey or vote.
func ItemID(id string) zap.Field {
	return zap.String("item_id", id)
}

// Command is the protocol command token.
func Command(cmd string) zap.Field {
	return zap.String("command", cmd)
}

// ConnID is the server-assigned connection number.
func ConnID(id uint64) zap.Field {
	return zap.Uint64("conn_id", id)
}

// RemoteAddr is the peer address of a connection.
func RemoteAddr(addr string) zap.Field {
	return zap.String("remote_addr", addr)
}

// RequestID correlates the log lines of one request.
func RequestID(id string) zap.Field {
	return zap.String("request_id", id)
}

// Username is the respondent name.
func Username(name string) zap.Field {
	return zap.String("username", name)
}

// Phase is a shutdown phase name.
func Phase(phase string) zap.Field {
	return zap.String("phase", phase)
}

// Goroutine names a worker for panic reports.
func Goroutine(name string) zap.Field {
	return zap.String("goroutine", name)
}

// Count is a generic counter.
func Count(count int) zap.Field {
	return zap.Int("count", count)
}
