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

package filestore

import (
	"errors"
	"testing"

	"pollStore/internal/poll"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRecord_Format(t *testing.T) {
	it := poll.New("coffee-or-tea", "Coffee or tea", []string{"Coffee", "Tea"})
	it.Record(poll.KindVote, "alice", []int{1})
	it.Status = poll.StatusClosed

	want := "Coffee or tea\n1\nCoffee:1\nTea:0\n---VOTERS---\nalice\n"
	assert.Equal(t, want, string(EncodeRecord(it)))
}

func TestEncodeRecord_NoRespondentsKeepsMarker(t *testing.T) {
	it := poll.New("pets", "Pets", []string{"Cat", "Dog", "Fish"})

	want := "Pets\n0\nCat:0\nDog:0\nFish:0\n---VOTERS---\n"
	assert.Equal(t, want, string(EncodeRecord(it)))
}

func TestDecodeRecord_RoundTrip(t *testing.T) {
	it := poll.New("time-zone", "Time: zone?", []string{"UTC+1", "a:b", "GMT"})
	it.Record(poll.KindSurvey, "alice", []int{1, 2})
	it.Record(poll.KindSurvey, "bob", []int{2})

	got, err := DecodeRecord("time-zone", EncodeRecord(it))
	require.NoError(t, err)
	assert.Equal(t, it, got)
}

func TestDecodeRecord_ToleratesCRLFAndBlankLines(t *testing.T) {
	data := "Lunch\r\n0\r\n\r\nPizza:2\r\nSushi:1\r\n---VOTERS---\r\nalice\r\n\r\nbob\r\n"

	it, err := DecodeRecord("lunch", []byte(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"Pizza", "Sushi"}, it.Options)
	assert.Equal(t, []int{2, 1}, it.Tally)
	assert.Equal(t, []string{"alice", "bob"}, it.Respondents)
}

func TestDecodeRecord_OptionWithoutCount(t *testing.T) {
	it, err := DecodeRecord("x", []byte("X\n0\nYes\nNo:3\n---VOTERS---\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, it.Tally)
}

func TestDecodeRecord_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "no status", data: "Prompt"},
		{name: "bad status", data: "Prompt\nopen\nA:0\nB:0\n---VOTERS---\n"},
		{name: "unknown status", data: "Prompt\n7\nA:0\nB:0\n---VOTERS---\n"},
		{name: "bad count", data: "Prompt\n0\nA:x\nB:0\n---VOTERS---\n"},
		{name: "one option", data: "Prompt\n0\nA:0\n---VOTERS---\n"},
		{name: "duplicate voter", data: "Prompt\n0\nA:2\nB:0\n---VOTERS---\nann\nann\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord("id", []byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord))
		})
	}
}
