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

import "testing"

func TestGlyph(t *testing.T) {
	for _, tt := range []struct {
		result TestResult
		color  bool
		want   string
	}{
		{Pass, false, "."},
		{Fail, false, "F"},
		{Pass, true, "\033[92m.\033[0m"},
		{Fail, true, "\033[91mF\033[0m"},
	} {
		if got := tt.result.Glyph(tt.color); got != tt.want {
			t.Errorf("%s.Glyph(%v) = %q, wanted %q", tt.result, tt.color, got, tt.want)
		}
	}
}

func TestOf(t *testing.T) {
	if Of("") != Pass {
		t.Errorf("empty error should pass")
	}
	if Of("non-zero return code 1") != Fail {
		t.Errorf("non-empty error should fail")
	}
}
