// Copyright 2015 CoreOS, Inc.
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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/pkg/capnslog"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/coreos/cctest/harness"
	"github.com/coreos/cctest/harness/config"
	"github.com/coreos/cctest/harness/reporters"
	"github.com/coreos/cctest/harness/testcase"
)

var plog = capnslog.NewPackageLogger("github.com/coreos/cctest", "cctest")

func newRootCmd() *cobra.Command {
	flags := config.Default()
	var configFile string

	root := &cobra.Command{
		Use:   "cctest [test-dir...]",
		Short: "Run the compiler test suite",
		Long: `Compile and run every test case and compare the results with the
recorded expectations.

A test case is a directory holding in.c and optionally compile_stdout,
compile_stderr, run_stdout, run_stderr and run_stdin. With no arguments
every leaf directory under --root is a test case.

Up to --parallel compilers run at once. The exit status is 0 whenever the
suite ran to completion, whatever the number of failures.
`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags, configFile)
			if err != nil {
				return err
			}
			return runTests(cmd, args, cfg)
		},
		SilenceUsage: true,
	}

	f := root.Flags()
	f.BoolVarP(&flags.Silent, "silent", "s", false, "print only the pass count")
	f.BoolVarP(&flags.Positive, "positive", "p", false, "list passing tests instead of failures")
	f.StringVar(&flags.Compiler, "cc", flags.Compiler, "compiler `command`, split with shell quoting rules")
	f.StringVar(&flags.Root, "root", flags.Root, "discover test cases under `dir`")
	f.IntVarP(&flags.Parallel, "parallel", "j", 0, "run at most `n` compilers at once (0 means one per processor)")
	f.StringVar(&flags.JSONReport, "json-report", "", "write a JSON report into `dir`")
	f.StringVar(&configFile, "config", "", "read defaults from a YAML `file`")

	return root
}

// resolveConfig layers explicitly set flags over the config file, if any.
func resolveConfig(cmd *cobra.Command, flags config.Config, path string) (config.Config, error) {
	if path == "" {
		return flags, nil
	}
	file, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	cfg := config.Default()
	cfg.Merge(file)

	set := cmd.Flags().Changed
	if set("cc") {
		cfg.Compiler = flags.Compiler
	}
	if set("root") {
		cfg.Root = flags.Root
	}
	if set("parallel") {
		cfg.Parallel = flags.Parallel
	}
	if set("json-report") {
		cfg.JSONReport = flags.JSONReport
	}
	if set("silent") {
		cfg.Silent = flags.Silent
	}
	if set("positive") {
		cfg.Positive = flags.Positive
	}
	plog.Debugf("configuration: %+v", cfg)
	return cfg, nil
}

func runTests(cmd *cobra.Command, args []string, cfg config.Config) error {
	detail, err := reporters.ParseDetail(cfg.Silent, cfg.Positive)
	if err != nil {
		return err
	}
	compiler, err := cfg.CompilerCommand()
	if err != nil {
		return err
	}

	dirs, roots := args, args
	if len(dirs) == 0 {
		if dirs, err = testcase.Discover(cfg.Root); err != nil {
			return err
		}
		roots = []string{cfg.Root}
	}
	cases, err := testcase.LoadAll(dirs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	progress := reporters.NewProgress(out, detail)
	reps := reporters.Reporters{progress}
	if cfg.JSONReport != "" {
		reps = append(reps, reporters.NewJSONReporter(cfg.JSONReport, shellquote.Join(compiler...)))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// a second signal during cleanup gets the default behaviour
	context.AfterFunc(ctx, stop)

	suite := harness.NewSuite(harness.Options{
		Compiler:  compiler,
		Parallel:  cfg.Parallel,
		Reporters: reps,
		Janitor:   harness.NewJanitor(roots...),
	}, cases)
	plog.Infof("running %d tests with %d compilers at once", len(cases), suite.Parallel())

	fmt.Fprintf(out, "Running %d tests:\n", len(cases))
	if _, err := suite.Run(ctx); err != nil {
		if ctx.Err() != nil {
			// the suite has already swept leftover binaries
			fmt.Fprintln(out)
			plog.Noticef("interrupted with %d of %d tests reported", progress.Total(), len(cases))
			return nil
		}
		return err
	}
	plog.Infof("%d of %d tests passed", progress.Passed(), progress.Total())
	return nil
}
