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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/coreos/cctest/harness/testresult"
)

// Detail selects what the summary prints after the tally.
type Detail int

const (
	// DetailFailures prints every failing case with its diagnostic.
	DetailFailures Detail = iota
	// DetailPasses prints the names of passing cases only.
	DetailPasses
	// DetailNone prints the tally only.
	DetailNone
)

var ErrConflictingDetail = errors.New("cannot specify both silent and positive output")

// ParseDetail maps the silent and positive switches to a Detail.
func ParseDetail(silent, positive bool) (Detail, error) {
	switch {
	case silent && positive:
		return 0, ErrConflictingDetail
	case silent:
		return DetailNone, nil
	case positive:
		return DetailPasses, nil
	}
	return DetailFailures, nil
}

// IsTerminal reports whether w is a terminal that can show colors.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if t := os.Getenv("TERM"); t == "" || t == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

type progressEntry struct {
	name   string
	result testresult.TestResult
	detail string
}

// Progress draws one glyph per verdict as it arrives and prints the
// summary on Output.
type Progress struct {
	w      io.Writer
	detail Detail
	color  bool

	results []progressEntry
	passed  int
	err     error
}

func NewProgress(w io.Writer, detail Detail) *Progress {
	return &Progress{
		w:      w,
		detail: detail,
		color:  IsTerminal(w),
	}
}

// SetColor overrides terminal detection.
func (p *Progress) SetColor(color bool) {
	p.color = color
}

func (p *Progress) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Progress) ReportTest(name string, result testresult.TestResult, _ time.Duration, detail string) {
	p.results = append(p.results, progressEntry{name: name, result: result, detail: detail})
	if result == testresult.Pass {
		p.passed++
	}
	p.printf("%s", result.Glyph(p.color))
}

func (p *Progress) SetResult(testresult.TestResult) {}

// Passed returns the number of passing verdicts seen so far.
func (p *Progress) Passed() int {
	return p.passed
}

// Total returns the number of verdicts seen so far.
func (p *Progress) Total() int {
	return len(p.results)
}

func (p *Progress) Output() error {
	p.printf("\n\n%d / %d tests passed\n", p.passed, len(p.results))
	for _, r := range p.results {
		switch {
		case p.detail == DetailPasses && r.result == testresult.Pass:
			p.printf("test '%s' passed\n", r.name)
		case p.detail == DetailFailures && r.result == testresult.Fail:
			p.printf("\ntest '%s' failed:\n%s\n", r.name, r.detail)
		}
	}
	return p.err
}
