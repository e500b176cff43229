// Copyright 2017 CoreOS, Inc.
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

package testresult

const (
	Fail TestResult = "FAIL"
	Pass TestResult = "PASS"
)

const (
	green = "\033[92m"
	red   = "\033[91m"
	reset = "\033[0m"
)

type TestResult string

// Of returns the result for a verdict whose failure reason is errText.
func Of(errText string) TestResult {
	if errText == "" {
		return Pass
	}
	return Fail
}

// Glyph is the single progress character for a result.
func (s TestResult) Glyph(color bool) string {
	g := "."
	if s == Fail {
		g = "F"
	}
	return s.paint(g, color)
}

func (s TestResult) paint(text string, color bool) string {
	if !color {
		return text
	}
	if s == Fail {
		return red + text + reset
	}
	return green + text + reset
}
