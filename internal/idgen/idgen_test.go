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

package idgen

import (
	"strings"
	"testing"

	"pollStore/internal/poll"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Coffee or tea", want: "coffee-or-tea"},
		{name: "punctuation dropped", in: "What's for lunch?", want: "whats-for-lunch"},
		{name: "whitespace run", in: "a \t\n b", want: "a-b"},
		{name: "trailing space", in: "Best editor  ", want: "best-editor"},
		{name: "leading space kept as hyphen", in: " go", want: "-go"},
		{name: "hyphen inside spaces", in: "red - blue", want: "red-blue"},
		{name: "digits", in: "Top 10 Films 2024", want: "top-10-films-2024"},
		{name: "non ascii dropped", in: "café au lait", want: "caf-au-lait"},
		{name: "only symbols", in: "?!?", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	got := Slugify(strings.Repeat("x", 200))
	assert.Len(t, got, poll.MaxIDLen)
}

func TestBase_Fallback(t *testing.T) {
	assert.Equal(t, "survey", Base(poll.KindSurvey, "???"))
	assert.Equal(t, "vote", Base(poll.KindVote, ""))
	assert.Equal(t, "hello", Base(poll.KindVote, "Hello"))
}

func TestAssign_Collisions(t *testing.T) {
	taken := map[string]bool{}
	exists := func(id string) bool { return taken[id] }

	var got []string
	for i := 0; i < 4; i++ {
		id := Assign(poll.KindSurvey, "Coffee or tea", exists)
		taken[id] = true
		got = append(got, id)
	}

	assert.Equal(t, []string{"coffee-or-tea", "coffee-or-tea-2", "coffee-or-tea-3", "coffee-or-tea-4"}, got)
}

func TestAssign_SkipsTakenSuffix(t *testing.T) {
	taken := map[string]bool{"vote": true, "vote-2": true, "vote-3": true}
	id := Assign(poll.KindVote, "", func(id string) bool { return taken[id] })
	assert.Equal(t, "vote-4", id)
}

func TestAssign_LongBaseKeepsSuffix(t *testing.T) {
	text := strings.Repeat("a", 100)
	base := Slugify(text)
	taken := map[string]bool{base: true}

	id := Assign(poll.KindSurvey, text, func(id string) bool { return taken[id] })
	assert.LessOrEqual(t, len(id), poll.MaxIDLen)
	assert.True(t, strings.HasSuffix(id, "-2"))
}
