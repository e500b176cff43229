// Copyright 2016 CoreOS, Inc.
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

// Package natsort orders strings so that runs of decimal digits compare
// by numeric value:
//
//	tests/2_loop < tests/10_call < tests/10_call/a
//
// Leading zeros make a run compare as the longer number only when the
// values are otherwise equal, so "007" sorts after "7".
package natsort

import (
	"sort"
	"strings"
)

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// chunk returns the leading run of s that is either all digits or
// contains no digits at all.
func chunk(s string) string {
	if s == "" {
		return s
	}
	digits := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i]
}

func compareNumbers(a, b string) int {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	switch {
	case len(ta) != len(tb):
		return sign(len(ta) - len(tb))
	case ta != tb:
		return strings.Compare(ta, tb)
	}
	return sign(len(a) - len(b))
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return +1
	}
	return 0
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal
// to or after b in natural order.
func Compare(a, b string) int {
	for a != "" && b != "" {
		ca, cb := chunk(a), chunk(b)
		var r int
		if isDigit(ca[0]) && isDigit(cb[0]) {
			r = compareNumbers(ca, cb)
		} else {
			r = strings.Compare(ca, cb)
		}
		if r != 0 {
			return r
		}
		a, b = a[len(ca):], b[len(cb):]
	}
	return sign(len(a) - len(b))
}

// Less determines if a naturally comes before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Strings natural sorts a slice of strings.
func Strings(s []string) {
	sort.SliceStable(s, func(i, j int) bool {
		return Less(s[i], s[j])
	})
}
