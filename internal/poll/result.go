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

// OptionResult is one line of a result query.
type OptionResult struct {
	Text    string
	Count   int
	Percent int
}

// Result is a point-in-time tally snapshot of an item.
type Result struct {
	ID           string
	Prompt       string
	Status       Status
	Participants int
	Total        int
	Options      []OptionResult
}

// Total returns the sum of all tally entries.
func Total(tally []int) int {
	total := 0
	for _, n := range tally {
		total += n
	}
	return total
}

// Percentages returns floor(tally[i]*100/total) per option, or all zeros
// when nothing has been counted yet.
func Percentages(tally []int) []int {
	pct := make([]int, len(tally))
	total := Total(tally)
	if total == 0 {
		return pct
	}
	for i, n := range tally {
		pct[i] = n * 100 / total
	}
	return pct
}

// Result builds the result snapshot of the item.
func (it *Item) Result() Result {
	pct := Percentages(it.Tally)
	res := Result{
		ID:           it.ID,
		Prompt:       it.Prompt,
		Status:       it.Status,
		Participants: len(it.Respondents),
		Total:        Total(it.Tally),
		Options:      make([]OptionResult, len(it.Options)),
	}
	for i, opt := range it.Options {
		res.Options[i] = OptionResult{Text: opt, Count: it.Tally[i], Percent: pct[i]}
	}
	return res
}
