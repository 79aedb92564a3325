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

package text

import (
	"fmt"
	"strings"

	"pollStore/internal/poll"
)

const (
	okPrefix    = "[OK] "
	errorPrefix = "[ERROR] "

	unknownCommand = errorPrefix + "Unknown command"
)

// noun is the lowercase item name used inside sentences.
func noun(kind poll.Kind) string {
	return kind.String()
}

// promptLabel is how listings and results introduce the prompt.
func promptLabel(kind poll.Kind) string {
	if kind == poll.KindVote {
		return "Title"
	}
	return "Question"
}

func created(kind poll.Kind, id string) string {
	return fmt.Sprintf("%s%s created with ID: %s", okPrefix, kind.Title(), id)
}

func recorded(kind poll.Kind) string {
	if kind == poll.KindVote {
		return okPrefix + "Your vote has been recorded."
	}
	return okPrefix + "Your response has been recorded."
}

func closed(kind poll.Kind, id string) string {
	return fmt.Sprintf("%s%s %s is now closed.", okPrefix, kind.Title(), id)
}

func invalidFormat(token string) string {
	return errorPrefix + "Invalid format for " + token
}

func optionCount(kind poll.Kind) string {
	return fmt.Sprintf("%sA %s needs between %d and %d options", errorPrefix, noun(kind), poll.MinOptions, poll.MaxOptions)
}

func notFound(kind poll.Kind) string {
	return errorPrefix + kind.Title() + " not found"
}

func itemClosed(kind poll.Kind) string {
	return fmt.Sprintf("%sThis %s is closed.", errorPrefix, noun(kind))
}

func alreadyResponded(kind poll.Kind) string {
	if kind == poll.KindVote {
		return errorPrefix + "You have already voted on this item."
	}
	return errorPrefix + "You have already participated in this survey."
}

func full(kind poll.Kind) string {
	return fmt.Sprintf("%sThis %s has reached its maximum number of participants.", errorPrefix, noun(kind))
}

func saveFailed(kind poll.Kind) string {
	return errorPrefix + "Failed to save " + noun(kind)
}

// formatList renders one line per item, or the empty notice.
func formatList(kind poll.Kind, items []poll.Summary) string {
	if len(items) == 0 {
		return fmt.Sprintf("No %ss available.", noun(kind))
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "[%s] ID: %s, %s: %s\n", it.Status, it.ID, promptLabel(kind), it.Prompt)
	}
	return b.String()
}

// formatResult renders the header and one line per option with floor percentages.
func formatResult(kind poll.Kind, res poll.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s [%s] (%d participants)\n", promptLabel(kind), res.Prompt, res.Status, res.Participants)
	for i, opt := range res.Options {
		fmt.Fprintf(&b, "  %d. %s - %d votes (%d%%)\n", i+1, opt.Text, opt.Count, opt.Percent)
	}
	return b.String()
}

// truncate cuts a response to the message size limit.
func truncate(resp string, max int) string {
	if max <= 0 {
		return resp
	}
	return poll.Truncate(resp, max)
}
