// Copyright 2018 CoreOS, Inc.
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

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cctest.yaml")
	doc := "compiler: \"./ncc -Werror\"\nroot: suite\nparallel: 4\njson_report: out\nsilent: true\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := &Config{
		Compiler:   "./ncc -Werror",
		Root:       "suite",
		Parallel:   4,
		JSONReport: "out",
		Silent:     true,
	}
	if diff := pretty.Compare(cfg, want); diff != "" {
		t.Errorf("unexpected config (-got +want):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	for _, doc := range []string{
		"compilr: ./ncc\n",
		"parallel: -1\n",
		"parallel: many\n",
	} {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("Parse(%q) succeeded", doc)
		}
	}
	if cfg, err := Parse(nil); err != nil || *cfg != (Config{}) {
		t.Errorf("empty document: %+v, %v", cfg, err)
	}
}

func TestMerge(t *testing.T) {
	c := Default()
	c.Merge(&Config{Root: "other", Parallel: 2, Positive: true})
	want := Config{Compiler: DefaultCompiler, Root: "other", Parallel: 2, Positive: true}
	if c != want {
		t.Errorf("got %+v wanted %+v", c, want)
	}
}

func TestCompilerCommand(t *testing.T) {
	c := Config{Compiler: `"/opt/my cc/ncc" -I 'inc dir'`}
	got, err := c.CompilerCommand()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"/opt/my cc/ncc", "-I", "inc dir"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q wanted %q", got, want)
	}
	for _, bad := range []string{"", "   ", `"unterminated`} {
		c := Config{Compiler: bad}
		if _, err := c.CompilerCommand(); err == nil {
			t.Errorf("CompilerCommand(%q) succeeded", bad)
		}
	}
}
