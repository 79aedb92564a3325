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

package poll

import "errors"

var (
	// ErrInvalidInput is returned for malformed or missing fields.
	ErrInvalidInput = errors.New("poll: invalid input")

	// ErrNotFound is returned when no item has the requested id.
	ErrNotFound = errors.New("poll: item not found")

	// ErrClosed is returned when responding to a closed item.
	ErrClosed = errors.New("poll: item is closed")

	// ErrAlreadyResponded is returned when the username already answered the item.
	ErrAlreadyResponded = errors.New("poll: already responded")

	// ErrFull is returned when the respondent cap has been reached.
	ErrFull = errors.New("poll: respondent limit reached")

	// ErrDurability is returned when an item record could not be written.
	// It only reaches clients when strict writes are enabled.
	ErrDurability = errors.New("poll: failed to persist item")
)
