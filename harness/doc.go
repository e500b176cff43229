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

// Package harness runs a compiler over a suite of on-disk test cases.
//
// Each case goes through two child processes. The compiler is invoked as
//
//	<compiler> <case>/in.c -o <case>/a.out.tmp <flags...>
//
// and, when the case expects a successful compile, the produced binary is
// run from the parent of the case directory with the recorded stdin. Exit
// status, stdout and stderr of both steps are compared byte for byte with
// the expectations loaded by package testcase.
//
// Compilation is the expensive step, so a Suite keeps up to
// Options.Parallel compilers running at once. Every compiler child gets a
// goroutine that waits for it and posts the finished job to a completion
// channel. A single control loop receives finished jobs in completion
// order, runs the compiled program synchronously, and hands the verdict to
// the reporters. Programs are never run in parallel with each other.
//
// A Suite never enforces timeouts: a hung compiler or program hangs the
// run until the context is canceled. Canceling the context stops
// admission, kills the children still running, waits for them, and lets
// the Janitor sweep transient binaries before Run returns.
package harness
