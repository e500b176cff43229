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
	"context"
	"sync"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"

	"github.com/coreos/cctest/harness/reporters"
	"github.com/coreos/cctest/harness/testcase"
	"github.com/coreos/cctest/harness/testresult"
	"github.com/coreos/cctest/lang/worker"
	"github.com/coreos/cctest/system"
)

var (
	ErrNoCompiler = errors.New("harness: no compiler command given")

	plog = capnslog.NewPackageLogger("github.com/coreos/cctest", "harness")
)

// Options
type Options struct {
	// Compiler is the compiler command line; the source, output and
	// per-case flags are appended to it.
	Compiler []string

	// Limit number of compilers running at once (0 means the number of
	// processors available to this process).
	Parallel int

	Reporters reporters.Reporters

	// Janitor, if set, sweeps transient binaries when Run is canceled.
	Janitor *Janitor
}

// init fills in any default values that shouldn't be the zero value.
func (o *Options) init() {
	if o.Parallel < 1 {
		o.Parallel = system.DefaultParallel()
	}
}

// Suite manages the execution of a set of test cases.
type Suite struct {
	opts  Options
	cases []*testcase.TestCase

	// mu protects the following fields, which are updated by the
	// goroutines waiting on compiler children.
	mu sync.Mutex

	// running is the number of compiler children currently alive.
	running int

	// peak is the highest value running has reached.
	peak int

	// pending is the number of cases not yet admitted.
	pending int
}

// NewSuite creates a new test suite. Cases are admitted in the order
// given. All parameters in Options cannot be modified once given to Suite.
func NewSuite(opts Options, cases []*testcase.TestCase) *Suite {
	opts.init()
	return &Suite{
		opts:    opts,
		cases:   cases,
		pending: len(cases),
	}
}

// Parallel returns the compiler concurrency limit in effect.
func (s *Suite) Parallel() int {
	return s.opts.Parallel
}

// Peak returns the largest number of compilers that ran at the same time.
func (s *Suite) Peak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

func (s *Suite) admitted() {
	s.mu.Lock()
	s.pending--
	s.mu.Unlock()
}

func (s *Suite) enter() {
	s.mu.Lock()
	s.running++
	if s.running > s.peak {
		s.peak = s.running
	}
	plog.Debugf("%d compilers running, %d cases pending", s.running, s.pending)
	s.mu.Unlock()
}

func (s *Suite) leave() {
	s.mu.Lock()
	s.running--
	s.mu.Unlock()
}

// Run compiles and runs every case and returns the verdicts in completion
// order. Case failures are recorded in the results and never make Run
// fail. If ctx is canceled Run returns the verdicts reached so far along
// with ctx.Err(), after every compiler child has exited and the Janitor
// has swept.
func (s *Suite) Run(ctx context.Context) ([]Result, error) {
	if len(s.opts.Compiler) == 0 {
		return nil, ErrNoCompiler
	}

	results := make([]Result, 0, len(s.cases))
	if len(s.cases) > 0 {
		done := make(chan *job, len(s.cases))
		admission := make(chan error, 1)
		wg := worker.NewWorkerGroup(ctx, s.opts.Parallel)
		go s.admit(wg, done, admission)

		for len(results) < len(s.cases) {
			// completions racing the cancellation are dropped
			if ctx.Err() != nil {
				return results, s.shutdown(ctx, admission, len(results))
			}
			select {
			case j := <-done:
				r := s.finish(ctx, j)
				if ctx.Err() != nil {
					// the program may have been killed by the interrupt
					return results, s.shutdown(ctx, admission, len(results))
				}
				s.opts.Reporters.ReportTest(r.Name, r.Status(), r.Duration, r.Error)
				results = append(results, r)
			case <-ctx.Done():
				return results, s.shutdown(ctx, admission, len(results))
			}
		}
		if err := <-admission; err != nil {
			return results, err
		}
	}

	overall := testresult.Pass
	for _, r := range results {
		if !r.Passed() {
			overall = testresult.Fail
			break
		}
	}
	s.opts.Reporters.SetResult(overall)
	return results, s.opts.Reporters.Output()
}

// admit starts one compile worker per case, blocking while the worker
// group is full. The final error, if any, is sent on admission once no
// worker is left running.
func (s *Suite) admit(wg *worker.WorkerGroup, done chan<- *job, admission chan<- error) {
	for _, tc := range s.cases {
		tc := tc
		err := wg.Start(func(ctx context.Context) error {
			done <- s.compile(ctx, tc)
			return nil
		})
		if err != nil {
			admission <- wg.WaitError(err)
			return
		}
		plog.Debugf("admitted %s (%d of %d slots busy)", tc.Name, wg.Active(), wg.Limit())
		s.admitted()
	}
	admission <- wg.Wait()
}

func (s *Suite) shutdown(ctx context.Context, admission <-chan error, finished int) error {
	// wait for the children killed by the canceled context
	<-admission
	plog.Noticef("interrupted after %d of %d tests", finished, len(s.cases))
	if s.opts.Janitor != nil {
		if n, err := s.opts.Janitor.Sweep(); err != nil {
			plog.Errorf("cleaning up after interrupt: %v", err)
		} else {
			plog.Infof("removed %d leftover binaries", n)
		}
	}
	return ctx.Err()
}
