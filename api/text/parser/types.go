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

package parser

import "pollStore/internal/poll"

// Action is what a command does, independent of the item kind.
type Action int

const (
	ActionCreate Action = iota
	ActionRespond
	ActionResult
	ActionList
	ActionClose
)

// String returns the command prefix of the action
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "CREATE"
	case ActionRespond:
		return "RESPOND"
	case ActionResult:
		return "RESULT"
	case ActionList:
		return "LIST"
	case ActionClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// Command is one entry of the closed command grammar
type Command struct {
	Action Action
	Kind   poll.Kind
}

// Token returns the wire name, e.g. "CREATE_SURVEY"
func (c Command) Token() string {
	switch c.Kind {
	case poll.KindSurvey:
		return c.Action.String() + "_SURVEY"
	case poll.KindVote:
		return c.Action.String() + "_VOTE"
	default:
		return c.Action.String()
	}
}

// fieldCount is the number of fields required after the command token
func (a Action) fieldCount() int {
	switch a {
	case ActionCreate:
		return 2 // prompt, options
	case ActionRespond:
		return 3 // id, selections, username
	case ActionResult, ActionClose:
		return 1 // id
	default:
		return 0
	}
}

// Request is a parsed client request. Only the fields of its action are set.
type Request struct {
	Command Command

	Prompt  string
	Options []string

	ID         string
	Selections []int
	Username   string
}
