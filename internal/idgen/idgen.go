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

// Package idgen derives human-readable item ids from free text.
package idgen

import (
	"strconv"
	"strings"

	"pollStore/internal/poll"
)

// Slugify keeps ASCII letters and digits (lowercased), turns each run of
// whitespace into one hyphen and drops everything else. The result is cut
// to poll.MaxIDLen and loses a trailing hyphen.
func Slugify(text string) string {
	var b strings.Builder
	lastHyphen := false
	for i := 0; i < len(text) && b.Len() < poll.MaxIDLen; i++ {
		c := text[i]
		switch {
		case isAlnum(c):
			b.WriteByte(toLower(c))
			lastHyphen = false
		case isSpace(c):
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Base returns the slug of text, or the kind's fallback token when the slug is empty.
func Base(kind poll.Kind, text string) string {
	if base := Slugify(text); base != "" {
		return base
	}
	return kind.FallbackID()
}

// Assign returns the first unused id among base, base-2, base-3, ...
//
// exists is consulted for every candidate, so the caller must hold the lock
// that also guards the insertion of the returned id.
func Assign(kind poll.Kind, text string, exists func(id string) bool) string {
	base := Base(kind, text)
	if !exists(base) {
		return base
	}
	for n := 2; ; n++ {
		suffix := "-" + strconv.Itoa(n)
		stem := base
		if len(stem)+len(suffix) > poll.MaxIDLen {
			stem = strings.TrimSuffix(stem[:poll.MaxIDLen-len(suffix)], "-")
		}
		candidate := stem + suffix
		if !exists(candidate) {
			return candidate
		}
	}
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
