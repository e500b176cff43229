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
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/coreos/cctest/harness/testcase"
	"github.com/coreos/cctest/system/exec"
)

// job is one case's trip through the compiler.
type job struct {
	tc    *testcase.TestCase
	cmd   *exec.ExecCmd
	start time.Time

	stdout bytes.Buffer
	stderr bytes.Buffer

	// err is set when the compiler could not be run at all, as opposed
	// to running and exiting non-zero.
	err error
}

// CompilerArgs returns the full compiler command line for tc.
func CompilerArgs(compiler []string, tc *testcase.TestCase) []string {
	args := make([]string, 0, len(compiler)+3+len(tc.Flags))
	args = append(args, compiler...)
	args = append(args, tc.Source, "-o", tc.Binary)
	return append(args, tc.Flags...)
}

// compile runs the compiler for tc to completion. It is called from a
// worker goroutine holding one of the Suite's slots.
func (s *Suite) compile(ctx context.Context, tc *testcase.TestCase) *job {
	j := &job{tc: tc, start: time.Now()}
	args := CompilerArgs(s.opts.Compiler, tc)
	j.cmd = exec.CommandContext(ctx, args[0], args[1:]...)
	j.cmd.Stdout = &j.stdout
	j.cmd.Stderr = &j.stderr

	plog.Debugf("compiling %s: %s", tc.Name, shellquote.Join(args...))
	if err := j.cmd.Start(); err != nil {
		j.err = err
		return j
	}
	s.enter()
	err := j.cmd.Wait()
	s.leave()
	if err != nil && !exec.IsExitError(err) {
		j.err = err
	}
	return j
}

// finish turns a compiled job into a verdict, running the program if the
// case calls for it. It runs on the Suite's control loop.
func (s *Suite) finish(ctx context.Context, j *job) Result {
	r := Result{Name: j.tc.Name}
	r.Error = s.check(ctx, j)
	r.Duration = time.Since(j.start)
	plog.Infof("%s: %s (%v)", r.Name, r.Status(), r.Duration)
	return r
}

func (s *Suite) check(ctx context.Context, j *job) string {
	tc := j.tc
	if j.err != nil {
		removeBinary(tc)
		if exec.IsCmdNotFound(j.err) {
			return fmt.Sprintf("compiler not found: %v", j.err)
		}
		return fmt.Sprintf("could not run compiler: %v", j.err)
	}

	stdout, stderr := j.stdout.String(), j.stderr.String()
	compiled := j.cmd.ExitStatus() == 0

	if tc.ExpectCompileFailure() {
		// A binary is never run for these cases, whatever the verdict.
		removeBinary(tc)
		switch {
		case stderr == tc.CompileStderr:
			return ""
		case compiled:
			return "compilation succeeded when expected to fail\n" +
				mismatch("compile stderr", tc.CompileStderr, stderr)
		default:
			return mismatch("compile stderr", tc.CompileStderr, stderr)
		}
	}

	if !compiled {
		removeBinary(tc)
		return fmt.Sprintf("compilation failed with status %d and stderr:\n%s",
			j.cmd.ExitStatus(), indent(stderr))
	}
	if stdout != tc.CompileStdout {
		removeBinary(tc)
		return mismatch("compile stdout", tc.CompileStdout, stdout)
	}

	return s.execute(ctx, tc)
}

// execute runs the compiled program for tc and removes it afterwards.
// Every check is made, and the first failure found is reported.
func (s *Suite) execute(ctx context.Context, tc *testcase.TestCase) string {
	defer removeBinary(tc)

	binary, err := filepath.Abs(tc.Binary)
	if err != nil {
		return fmt.Sprintf("resolving %s: %v", tc.Binary, err)
	}
	dir, err := tc.WorkDir()
	if err != nil {
		return fmt.Sprintf("resolving working directory: %v", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(tc.Stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	plog.Debugf("running %s in %s", binary, dir)
	if err := cmd.Run(); err != nil && !exec.IsExitError(err) {
		return fmt.Sprintf("could not run %s: %v", binary, err)
	}

	var failure string
	record := func(msg string) {
		if failure == "" {
			failure = msg
		}
	}
	if status := cmd.ExitStatus(); status != 0 {
		record(fmt.Sprintf("non-zero return code %d", status))
	}
	if got := stdout.String(); got != tc.RunStdout {
		record(mismatch("runtime stdout", tc.RunStdout, got))
	}
	if got := stderr.String(); got != tc.RunStderr {
		record(mismatch("runtime stderr", tc.RunStderr, got))
	}
	return failure
}

func removeBinary(tc *testcase.TestCase) {
	if err := os.Remove(tc.Binary); err != nil && !os.IsNotExist(err) {
		plog.Warningf("removing %s: %v", tc.Binary, err)
	}
}

func mismatch(what, expected, actual string) string {
	return fmt.Sprintf("expected %s:\n%s\ngot:\n%s", what, indent(expected), indent(actual))
}

// indent prefixes every line of s, including a trailing empty one, with
// four spaces so that blank output is still visible.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
