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

package reliability

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"pollStore/pkg/log"
)

// PanicCounter counts recovered panics process-wide
var PanicCounter int64

// RecoverPanic recovers a panic in the calling goroutine.
// Use it as defer RecoverPanic("goroutine-name") at the top of the goroutine.
func RecoverPanic(goroutineName string) {
	if r := recover(); r != nil {
		handlePanic(goroutineName, r)
	}
}

// RecoverPanicWith is RecoverPanic followed by onPanic, which runs only when
// a panic was recovered. Callers use onPanic for their own accounting.
func RecoverPanicWith(goroutineName string, onPanic func()) {
	if r := recover(); r != nil {
		handlePanic(goroutineName, r)
		if onPanic != nil {
			onPanic()
		}
	}
}

func handlePanic(goroutineName string, r interface{}) {
	atomic.AddInt64(&PanicCounter, 1)

	stack := debug.Stack()

	log.Error("Panic recovered",
		log.Goroutine(goroutineName),
		log.String("panic_value", fmt.Sprintf("%v", r)),
		log.String("stack", string(stack)),
		log.Component("panic-recovery"))
}

// GetPanicCount returns the number of recovered panics
func GetPanicCount() int64 {
	return atomic.LoadInt64(&PanicCounter)
}

// ResetPanicCount resets the panic counter
func ResetPanicCount() {
	atomic.StoreInt64(&PanicCounter, 0)
}
