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

// Package config reads the optional YAML file that supplies defaults for
// cctest's command line flags.
//
//	compiler: ./ncc -Werror
//	root: tests
//	parallel: 4
//	json_report: _reports
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCompiler = "./ncc"
	DefaultRoot     = "tests"
)

// Config holds run settings. Zero values mean "not set".
type Config struct {
	Compiler   string `yaml:"compiler"`
	Root       string `yaml:"root"`
	Parallel   int    `yaml:"parallel"`
	JSONReport string `yaml:"json_report"`
	Silent     bool   `yaml:"silent"`
	Positive   bool   `yaml:"positive"`
}

// Default returns the settings used when neither a file nor a flag says
// otherwise.
func Default() Config {
	return Config{
		Compiler: DefaultCompiler,
		Root:     DefaultRoot,
	}
}

// Load reads the config file at path. Unknown keys are an error.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config")
	}
	cfg, err := Parse(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return cfg, nil
}

// Parse decodes a YAML document; an empty document yields an empty Config.
func Parse(buf []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, err
	}
	if cfg.Parallel < 0 {
		return nil, errors.Errorf("parallel must not be negative, got %d", cfg.Parallel)
	}
	return &cfg, nil
}

// Merge overlays the values set in o onto c.
func (c *Config) Merge(o *Config) {
	if o.Compiler != "" {
		c.Compiler = o.Compiler
	}
	if o.Root != "" {
		c.Root = o.Root
	}
	if o.Parallel != 0 {
		c.Parallel = o.Parallel
	}
	if o.JSONReport != "" {
		c.JSONReport = o.JSONReport
	}
	c.Silent = c.Silent || o.Silent
	c.Positive = c.Positive || o.Positive
}

// CompilerCommand splits Compiler into argv using shell quoting rules.
func (c *Config) CompilerCommand() ([]string, error) {
	argv, err := shellquote.Split(c.Compiler)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing compiler command %q", c.Compiler)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty compiler command")
	}
	return argv, nil
}
