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

package testcase

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/pkg/errors"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestParseFlags(t *testing.T) {
	for _, tt := range []struct {
		source string
		flags  []string
	}{
		{"int main(){return 0;}\n", nil},
		{"// FLAGS: -O2\nint main(){}\n", []string{"-O2"}},
		{"// FLAGS: -O2 -fno-inline \nint main(){}\n", []string{"-O2", "-fno-inline"}},
		{"// FLAGS: -DX=1", []string{"-DX=1"}},
		{"// FLAGS:\n", nil},
		{"int x;\n// FLAGS: -O2\n", nil},
		{"", nil},
	} {
		if got := ParseFlags(tt.source); !reflect.DeepEqual(got, tt.flags) {
			t.Errorf("ParseFlags(%q) = %q, wanted %q", tt.source, got, tt.flags)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "arith")
	writeFiles(t, dir, map[string]string{
		SourceName:        "// FLAGS: -m32\nint main(){return 0;}\n",
		CompileStdoutName: "note\n",
		RunStdoutName:     "42\n",
		RunStderrName:     "  warn \n",
		RunStdinName:      "input",
		"README":          "ignored",
	})

	tc, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := &TestCase{
		Name:          dir,
		Source:        filepath.Join(dir, SourceName),
		Binary:        filepath.Join(dir, BinaryName),
		CompileStdout: "note\n",
		RunStdout:     "42\n",
		RunStderr:     "  warn \n",
		Stdin:         "input",
		Flags:         []string{"-m32"},
	}
	if diff := pretty.Compare(tc, want); diff != "" {
		t.Errorf("unexpected test case (-got +want):\n%s", diff)
	}
	if tc.ExpectCompileFailure() {
		t.Errorf("case without compile_stderr expects a compile failure")
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ret0")
	writeFiles(t, dir, map[string]string{SourceName: "int main(){return 0;}"})

	tc, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tc.CompileStdout != "" || tc.CompileStderr != "" || tc.RunStdout != "" ||
		tc.RunStderr != "" || tc.Stdin != "" || tc.Flags != nil {
		t.Errorf("expected empty defaults, got %+v", tc)
	}
}

func TestLoadCompileFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bad")
	writeFiles(t, dir, map[string]string{
		SourceName:        "int main({",
		CompileStderrName: "error: x\n",
	})
	tc, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !tc.ExpectCompileFailure() {
		t.Errorf("case with compile_stderr should expect a compile failure")
	}
}

func TestLoadMissingSource(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "empty")
	writeFiles(t, dir, map[string]string{RunStdoutName: "x"})

	_, err := Load(dir)
	if errors.Cause(err) != ErrNoSource {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
	if _, err := LoadAll([]string{dir}); errors.Cause(err) != ErrNoSource {
		t.Errorf("LoadAll: expected ErrNoSource, got %v", err)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"10_call", "2_loop", "ptr/deref", "ptr/arith", "misc/a/b"} {
		writeFiles(t, filepath.Join(root, dir), map[string]string{SourceName: "int main(){}\n"})
	}
	// a directory with a file and a subdirectory is not a leaf
	writeFiles(t, filepath.Join(root, "misc"), map[string]string{SourceName: "int main(){}\n"})

	got, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	want := []string{
		filepath.Join(root, "2_loop"),
		filepath.Join(root, "10_call"),
		filepath.Join(root, "misc/a/b"),
		filepath.Join(root, "ptr/arith"),
		filepath.Join(root, "ptr/deref"),
	}
	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("unexpected leaves (-got +want):\n%s", diff)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	got, err := Discover(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(got) != 0 {
		t.Errorf("expected no tests and no error, got %v, %v", got, err)
	}
}

func TestWorkDir(t *testing.T) {
	tc := &TestCase{Name: "tests/arith/"}
	got, err := tc.WorkDir()
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.Abs("tests")
	if got != want {
		t.Errorf("got %q wanted %q", got, want)
	}
}
