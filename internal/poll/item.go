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

import (
	"fmt"
	"unicode/utf8"
)

// Bounds shared by every item kind.
const (
	MaxPromptLen   = 255
	MaxOptionLen   = 63
	MaxUsernameLen = 31
	MaxIDLen       = 63

	MinOptions     = 2
	MaxOptions     = 5
	MaxRespondents = 100
)

// Kind distinguishes the two item collections.
type Kind int

const (
	// KindSurvey accepts several selections per respondent
	KindSurvey Kind = iota
	// KindVote accepts exactly one selection per respondent
	KindVote
)

// Kinds lists every kind in load order.
var Kinds = []Kind{KindSurvey, KindVote}

// String returns the namespace name of the kind ("survey" or "vote").
func (k Kind) String() string {
	switch k {
	case KindSurvey:
		return "survey"
	case KindVote:
		return "vote"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Title returns the capitalized kind name used in client messages.
func (k Kind) Title() string {
	switch k {
	case KindSurvey:
		return "Survey"
	case KindVote:
		return "Vote"
	default:
		return "Item"
	}
}

// MultiSelect reports whether every selection in a response is counted.
func (k Kind) MultiSelect() bool {
	return k == KindSurvey
}

// FallbackID is used when the prompt yields an empty slug.
func (k Kind) FallbackID() string {
	return k.String()
}

// Status is the lifecycle state of an item. Active -> Closed only.
type Status int

const (
	StatusActive Status = 0
	StatusClosed Status = 1
)

func (s Status) String() string {
	if s == StatusClosed {
		return "Closed"
	}
	return "Active"
}

// Item is a survey or a vote.
type Item struct {
	ID          string
	Prompt      string
	Options     []string
	Tally       []int
	Status      Status
	Respondents []string
}

// Summary is the listing view of an item.
type Summary struct {
	ID     string
	Status Status
	Prompt string
}

// New builds an active item with a zeroed tally.
func New(id, prompt string, options []string) *Item {
	opts := make([]string, len(options))
	copy(opts, options)
	return &Item{
		ID:          id,
		Prompt:      prompt,
		Options:     opts,
		Tally:       make([]int, len(opts)),
		Status:      StatusActive,
		Respondents: []string{},
	}
}

// Clone returns a deep copy. The store mutates clones and swaps them in
// once the record has been written.
func (it *Item) Clone() *Item {
	c := &Item{
		ID:          it.ID,
		Prompt:      it.Prompt,
		Status:      it.Status,
		Options:     make([]string, len(it.Options)),
		Tally:       make([]int, len(it.Tally)),
		Respondents: make([]string, len(it.Respondents)),
	}
	copy(c.Options, it.Options)
	copy(c.Tally, it.Tally)
	copy(c.Respondents, it.Respondents)
	return c
}

// HasResponded reports whether username is already in the respondent set.
func (it *Item) HasResponded(username string) bool {
	for _, r := range it.Respondents {
		if r == username {
			return true
		}
	}
	return false
}

// Record counts selections (1-based option indices) and appends the
// respondent. Out-of-range indices are dropped; duplicates count twice.
// For a single-select kind only the first selection is considered.
// Callers must have checked status, duplicates and capacity first.
func (it *Item) Record(kind Kind, username string, selections []int) {
	if !kind.MultiSelect() && len(selections) > 1 {
		selections = selections[:1]
	}
	for _, sel := range selections {
		idx := sel - 1
		if idx >= 0 && idx < len(it.Tally) {
			it.Tally[idx]++
		}
	}
	it.Respondents = append(it.Respondents, username)
}

// Summary returns the listing view.
func (it *Item) Summary() Summary {
	return Summary{ID: it.ID, Status: it.Status, Prompt: it.Prompt}
}

// Validate checks the structural invariants of an item.
func (it *Item) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidInput)
	}
	if it.Prompt == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidInput)
	}
	if len(it.Options) < MinOptions || len(it.Options) > MaxOptions {
		return fmt.Errorf("%w: %d options, want %d..%d", ErrInvalidInput, len(it.Options), MinOptions, MaxOptions)
	}
	if len(it.Tally) != len(it.Options) {
		return fmt.Errorf("%w: tally length %d != options %d", ErrInvalidInput, len(it.Tally), len(it.Options))
	}
	for i, n := range it.Tally {
		if n < 0 {
			return fmt.Errorf("%w: negative tally at option %d", ErrInvalidInput, i+1)
		}
	}
	if it.Status != StatusActive && it.Status != StatusClosed {
		return fmt.Errorf("%w: unknown status %d", ErrInvalidInput, it.Status)
	}
	if len(it.Respondents) > MaxRespondents {
		return fmt.Errorf("%w: %d respondents exceeds %d", ErrInvalidInput, len(it.Respondents), MaxRespondents)
	}
	seen := make(map[string]struct{}, len(it.Respondents))
	for _, r := range it.Respondents {
		if _, dup := seen[r]; dup {
			return fmt.Errorf("%w: duplicate respondent %q", ErrInvalidInput, r)
		}
		seen[r] = struct{}{}
	}
	return nil
}

// Truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
