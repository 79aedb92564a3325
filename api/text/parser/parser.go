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

// Package parser splits the pipe-delimited request text into typed requests.
// It does syntax only; bounds and semantics are checked by the store.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"pollStore/internal/poll"
)

const (
	fieldSep = "|"
	listSep  = ","
)

var (
	// ErrUnknownCommand is returned when the first field is not a command token.
	ErrUnknownCommand = errors.New("parser: unknown command")

	// ErrMalformed is returned when a known command lacks a required field.
	ErrMalformed = errors.New("parser: malformed request")
)

var commands = func() map[string]Command {
	m := make(map[string]Command)
	for _, kind := range poll.Kinds {
		for _, a := range []Action{ActionCreate, ActionRespond, ActionResult, ActionList, ActionClose} {
			c := Command{Action: a, Kind: kind}
			m[c.Token()] = c
		}
	}
	return m
}()

// Lookup returns the command of an exact wire token.
func Lookup(token string) (Command, bool) {
	c, ok := commands[token]
	return c, ok
}

// Parse parses one request. Trailing line terminators are ignored and fields
// beyond the ones a command takes are ignored too. On ErrMalformed the
// returned request still carries the recognized command.
func Parse(msg string) (*Request, error) {
	msg = strings.TrimRight(msg, "\r\n\x00")
	fields := strings.Split(msg, fieldSep)

	cmd, ok := Lookup(fields[0])
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	req := &Request{Command: cmd}

	args := fields[1:]
	if len(args) < cmd.Action.fieldCount() {
		return req, fmt.Errorf("%w: %s takes %d fields, got %d", ErrMalformed, cmd.Token(), cmd.Action.fieldCount(), len(args))
	}
	for i := 0; i < cmd.Action.fieldCount(); i++ {
		if args[i] == "" {
			return req, fmt.Errorf("%w: %s field %d is empty", ErrMalformed, cmd.Token(), i+1)
		}
	}

	switch cmd.Action {
	case ActionCreate:
		req.Prompt = args[0]
		req.Options = SplitList(args[1])
	case ActionRespond:
		req.ID = args[0]
		for _, tok := range SplitList(args[1]) {
			req.Selections = append(req.Selections, Atoi(tok))
		}
		req.Username = args[2]
	case ActionResult, ActionClose:
		req.ID = args[0]
	}
	return req, nil
}

// SplitList splits a comma-joined field, skipping empty tokens.
func SplitList(field string) []string {
	var out []string
	for _, tok := range strings.Split(field, listSep) {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// Atoi reads an optionally signed decimal prefix after leading spaces and
// returns 0 when there is none. Overflowing values saturate.
func Atoi(s string) int {
	s = strings.TrimLeft(s, " \t")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n > (1<<31-1)/10 {
			n = 1<<31 - 1
			break
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}
