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
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"pollStore/internal/poll"
)

// VotersMarker separates the option lines from the respondent lines.
const VotersMarker = "---VOTERS---"

// EncodeRecord renders an item in the flat record format:
//
//	<prompt>
//	<status code>
//	<option>:<count>     (one line per option)
//	---VOTERS---
//	<username>           (one line per respondent)
func EncodeRecord(it *poll.Item) []byte {
	var buf bytes.Buffer
	buf.WriteString(it.Prompt)
	buf.WriteByte('\n')
	buf.WriteString(strconv.Itoa(int(it.Status)))
	buf.WriteByte('\n')
	for i, opt := range it.Options {
		buf.WriteString(opt)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(it.Tally[i]))
		buf.WriteByte('\n')
	}
	buf.WriteString(VotersMarker)
	buf.WriteByte('\n')
	for _, name := range it.Respondents {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// DecodeRecord parses a record written by EncodeRecord. The id comes from
// the record name. Blank lines after the status line are ignored.
func DecodeRecord(id string, data []byte) (*poll.Item, error) {
	lines := strings.Split(string(data), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	if len(lines) < 2 || lines[0] == "" {
		return nil, fmt.Errorf("%w: record %s: missing prompt", ErrMalformedRecord, id)
	}

	it := &poll.Item{
		ID:          id,
		Prompt:      lines[0],
		Options:     []string{},
		Tally:       []int{},
		Respondents: []string{},
	}

	code, err := strconv.Atoi(strings.TrimSpace(lines[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: record %s: bad status line %q", ErrMalformedRecord, id, lines[1])
	}
	it.Status = poll.Status(code)

	inVoters := false
	for _, line := range lines[2:] {
		if line == "" {
			continue
		}
		if !inVoters && line == VotersMarker {
			inVoters = true
			continue
		}
		if inVoters {
			it.Respondents = append(it.Respondents, line)
			continue
		}

		text, count := line, 0
		if sep := strings.LastIndexByte(line, ':'); sep >= 0 {
			text = line[:sep]
			count, err = strconv.Atoi(strings.TrimSpace(line[sep+1:]))
			if err != nil {
				return nil, fmt.Errorf("%w: record %s: bad option line %q", ErrMalformedRecord, id, line)
			}
		}
		it.Options = append(it.Options, text)
		it.Tally = append(it.Tally, count)
	}

	if err := it.Validate(); err != nil {
		return nil, fmt.Errorf("%w: record %s: %v", ErrMalformedRecord, id, err)
	}
	return it, nil
}
