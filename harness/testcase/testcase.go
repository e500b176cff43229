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

// Package testcase loads compiler test cases from disk.
//
// A test case is a leaf directory holding an in.c source file and any of
// the expectation files compile_stdout, compile_stderr, run_stdout,
// run_stderr and run_stdin. Missing expectation files mean empty output.
// A non-empty compile_stderr marks a case that must fail to compile.
//
// The first line of in.c may pass extra compiler flags:
//
//	// FLAGS: -O2 -fno-inline
package testcase

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"

	"github.com/coreos/cctest/lang/natsort"
)

const (
	SourceName = "in.c"
	// BinaryName is the transient compiler output left in each case
	// directory between compilation and execution.
	BinaryName = "a.out.tmp"

	CompileStdoutName = "compile_stdout"
	CompileStderrName = "compile_stderr"
	RunStdoutName     = "run_stdout"
	RunStderrName     = "run_stderr"
	RunStdinName      = "run_stdin"

	FlagsMarker = "// FLAGS:"
)

var (
	ErrNoSource = errors.New("testcase: missing " + SourceName)

	plog = capnslog.NewPackageLogger("github.com/coreos/cctest", "harness/testcase")
)

// TestCase is one loaded test directory.
type TestCase struct {
	// Name is the directory as given and is used for display.
	Name   string
	Source string
	Binary string

	CompileStdout string
	CompileStderr string
	RunStdout     string
	RunStderr     string
	Stdin         string

	Flags []string
}

// ExpectCompileFailure reports whether the compiler must reject the source.
func (tc *TestCase) ExpectCompileFailure() bool {
	return tc.CompileStderr != ""
}

// WorkDir is the directory the compiled program runs from: the parent of
// the case directory, so fixtures can be opened with relative paths.
func (tc *TestCase) WorkDir() (string, error) {
	return filepath.Abs(filepath.Dir(filepath.Clean(tc.Name)))
}

// Load reads the test case in dir. A missing source file is reported as
// ErrNoSource.
func Load(dir string) (*TestCase, error) {
	tc := &TestCase{
		Name:   dir,
		Source: filepath.Join(dir, SourceName),
		Binary: filepath.Join(dir, BinaryName),
	}

	src, err := os.ReadFile(tc.Source)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNoSource, "%s", dir)
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading %s", tc.Source)
	}
	tc.Flags = ParseFlags(string(src))

	for name, field := range map[string]*string{
		CompileStdoutName: &tc.CompileStdout,
		CompileStderrName: &tc.CompileStderr,
		RunStdoutName:     &tc.RunStdout,
		RunStderrName:     &tc.RunStderr,
		RunStdinName:      &tc.Stdin,
	} {
		if *field, err = readOptional(filepath.Join(dir, name)); err != nil {
			return nil, err
		}
	}

	plog.Debugf("loaded %s (flags %q)", dir, tc.Flags)
	return tc, nil
}

// LoadAll loads every directory, stopping at the first fixture error.
func LoadAll(dirs []string) ([]*TestCase, error) {
	cases := make([]*TestCase, 0, len(dirs))
	for _, dir := range dirs {
		tc, err := Load(dir)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

func readOptional(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", errors.Wrapf(err, "reading %s", path)
	}
	return string(buf), nil
}

// ParseFlags returns the flags named on the first line of source, split
// on single spaces, or nil when the line carries no FLAGS marker.
func ParseFlags(source string) []string {
	line := source
	if i := strings.IndexByte(source, '\n'); i >= 0 {
		line = source[:i]
	}
	if !strings.HasPrefix(line, FlagsMarker) {
		return nil
	}
	flags := strings.TrimSpace(line[len(FlagsMarker):])
	if flags == "" {
		return nil
	}
	return strings.Split(flags, " ")
}

// Discover returns every leaf directory under root in natural order. A
// root that does not exist holds no tests.
func Discover(root string) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		plog.Warningf("test root %s does not exist", root)
		return nil, nil
	}

	var leaves []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsDir() {
				return nil
			}
		}
		leaves = append(leaves, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "discovering tests under %s", root)
	}
	natsort.Strings(leaves)
	return leaves, nil
}
