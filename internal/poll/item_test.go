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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentages(t *testing.T) {
	tests := []struct {
		name  string
		tally []int
		want  []int
	}{
		{name: "three to one", tally: []int{3, 1}, want: []int{75, 25}},
		{name: "all zero", tally: []int{0, 0, 0}, want: []int{0, 0, 0}},
		{name: "floor not round", tally: []int{1, 1, 1}, want: []int{33, 33, 33}},
		{name: "two thirds", tally: []int{2, 1}, want: []int{66, 33}},
		{name: "single winner", tally: []int{1, 0}, want: []int{100, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentages(tt.tally))
		})
	}
}

func TestItem_RecordMultiSelect(t *testing.T) {
	it := New("lunch", "Lunch", []string{"Pizza", "Sushi", "Salad"})

	// duplicate 2 counts twice, 0 and 9 are dropped
	it.Record(KindSurvey, "alice", []int{2, 2, 0, 9, 3})

	assert.Equal(t, []int{0, 2, 1}, it.Tally)
	assert.Equal(t, []string{"alice"}, it.Respondents)
}

func TestItem_RecordSingleSelect(t *testing.T) {
	it := New("lunch", "Lunch", []string{"Pizza", "Sushi"})

	it.Record(KindVote, "bob", []int{2, 1, 1})
	assert.Equal(t, []int{0, 1}, it.Tally)

	// an invalid first selection drops the whole ballot but keeps the respondent
	it.Record(KindVote, "carol", []int{0, 1})
	assert.Equal(t, []int{0, 1}, it.Tally)
	assert.True(t, it.HasResponded("carol"))
}

func TestItem_CloneIsDeep(t *testing.T) {
	it := New("x", "X", []string{"a", "b"})
	c := it.Clone()
	c.Record(KindSurvey, "dave", []int{1})
	c.Status = StatusClosed

	assert.Equal(t, []int{0, 0}, it.Tally)
	assert.Empty(t, it.Respondents)
	assert.Equal(t, StatusActive, it.Status)
}

func TestItem_Validate(t *testing.T) {
	valid := New("ok", "Ok", []string{"a", "b"})
	require.NoError(t, valid.Validate())

	tooFew := New("few", "Few", []string{"a"})
	assert.True(t, errors.Is(tooFew.Validate(), ErrInvalidInput))

	tooMany := New("many", "Many", []string{"a", "b", "c", "d", "e", "f"})
	assert.True(t, errors.Is(tooMany.Validate(), ErrInvalidInput))

	dup := New("dup", "Dup", []string{"a", "b"})
	dup.Respondents = []string{"eve", "eve"}
	assert.True(t, errors.Is(dup.Validate(), ErrInvalidInput))

	mismatch := New("mm", "Mm", []string{"a", "b"})
	mismatch.Tally = []int{1}
	assert.Error(t, mismatch.Validate())
}

func TestItem_Result(t *testing.T) {
	it := New("coffee-or-tea", "Coffee or tea", []string{"Coffee", "Tea"})
	it.Record(KindVote, "alice", []int{1})

	res := it.Result()
	assert.Equal(t, 1, res.Participants)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Options, 2)
	assert.Equal(t, OptionResult{Text: "Coffee", Count: 1, Percent: 100}, res.Options[0])
	assert.Equal(t, OptionResult{Text: "Tea", Count: 0, Percent: 0}, res.Options[1])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, strings.Repeat("a", MaxOptionLen), Truncate(strings.Repeat("a", 100), MaxOptionLen))

	// "é" is two bytes; cutting inside it backs off to the rune start
	assert.Equal(t, "a", Truncate("aé", 2))
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "survey", KindSurvey.String())
	assert.Equal(t, "Vote", KindVote.Title())
	assert.True(t, KindSurvey.MultiSelect())
	assert.False(t, KindVote.MultiSelect())
	assert.Equal(t, "Closed", StatusClosed.String())
}
