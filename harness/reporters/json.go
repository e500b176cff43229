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

package reporters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/coreos/cctest/harness/testresult"
)

// ReportName is the file written by the JSON reporter inside its directory.
const ReportName = "report.json"

type jsonReporter struct {
	RunID    string                `json:"run_id"`
	Compiler string                `json:"compiler"`
	Started  time.Time             `json:"started"`
	Tests    []jsonTest            `json:"tests"`
	Result   testresult.TestResult `json:"result"`

	dir string
}

type jsonTest struct {
	Name     string                `json:"name"`
	Result   testresult.TestResult `json:"result"`
	Duration time.Duration         `json:"duration"`
	Error    string                `json:"error,omitempty"`
}

// DeserialiseReport reads a report written by the JSON reporter.
func DeserialiseReport(filename string) (*jsonReporter, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var data jsonReporter
	if err = json.Unmarshal(buf, &data); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	return &data, nil
}

// NewJSONReporter returns a reporter writing dir/report.json, stamped with
// a fresh run id and the compiler command line.
func NewJSONReporter(dir, compiler string) *jsonReporter {
	return &jsonReporter{
		RunID:    uuid.New().String(),
		Compiler: compiler,
		Started:  time.Now().UTC(),
		Tests:    []jsonTest{},
		dir:      dir,
	}
}

func (r *jsonReporter) ReportTest(name string, result testresult.TestResult, duration time.Duration, detail string) {
	r.Tests = append(r.Tests, jsonTest{
		Name:     name,
		Result:   result,
		Duration: duration,
		Error:    detail,
	})
}

func (r *jsonReporter) Output() error {
	if err := os.MkdirAll(r.dir, 0777); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(r.dir, ReportName))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *jsonReporter) SetResult(result testresult.TestResult) {
	r.Result = result
}
