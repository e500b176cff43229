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

package harness

import (
	"time"

	"github.com/coreos/cctest/harness/testresult"
)

// Result is the verdict for one test case. An empty Error means the case
// passed; otherwise Error holds the first failure detected.
type Result struct {
	Name     string
	Error    string
	Duration time.Duration
}

func (r Result) Passed() bool {
	return r.Error == ""
}

func (r Result) Status() testresult.TestResult {
	return testresult.Of(r.Error)
}
