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

// exec is extension of the standard os.exec package.
// It adds one-shot waiting and exit status helpers for child processes
// whose output is captured and compared byte for byte.
package exec

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

var (
	// for equivalence with os/exec
	ErrNotFound = exec.ErrNotFound

	// WaitDelay bounds how long Wait keeps collecting output after the
	// process has exited or been killed.
	WaitDelay = 2 * time.Second
)

// ExecCmd is an exec.Cmd that may be waited on more than once and
// reports its exit status in the same form for every way a child can end.
type ExecCmd struct {
	*exec.Cmd
	cancel  context.CancelFunc
	wait    sync.Once
	waitErr error
}

func Command(name string, arg ...string) *ExecCmd {
	return CommandContext(context.Background(), name, arg...)
}

// CommandContext returns a command that is killed if ctx is done before
// the process exits on its own. The process runs in its own process group
// and the whole group is killed, so helpers it forked cannot keep Wait
// blocked on the output pipes.
func CommandContext(ctx context.Context, name string, arg ...string) *ExecCmd {
	ctx, cancel := context.WithCancel(ctx)
	c := exec.CommandContext(ctx, name, arg...)
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		// negative pid: the process group led by the child
		err := syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
		if err == syscall.ESRCH {
			return os.ErrProcessDone
		}
		return err
	}
	c.WaitDelay = WaitDelay
	return &ExecCmd{
		Cmd:    c,
		cancel: cancel,
	}
}

// Wait waits for the process once; later calls return the same error.
func (cmd *ExecCmd) Wait() error {
	cmd.wait.Do(func() {
		cmd.waitErr = cmd.Cmd.Wait()
		cmd.cancel()
	})
	return cmd.waitErr
}

// Run starts the command and waits for it.
func (cmd *ExecCmd) Run() error {
	if err := cmd.Start(); err != nil {
		cmd.cancel()
		return err
	}
	return cmd.Wait()
}

// ExitStatus returns the exit code of a finished process. A process
// killed by a signal reports the negated signal number, so a crash is
// never mistaken for success. It returns -1 if the process never ran.
func (cmd *ExecCmd) ExitStatus() int {
	if cmd.ProcessState == nil {
		return -1
	}
	status := cmd.ProcessState.Sys().(syscall.WaitStatus)
	if status.Signaled() {
		return -int(status.Signal())
	}
	return status.ExitStatus()
}

// IsExitError reports whether err only describes a non-zero exit, as
// opposed to a failure to start or to collect the process.
func IsExitError(err error) bool {
	_, ok := err.(*exec.ExitError)
	return ok
}

// IsCmdNotFound reports true if the command could not be found, either
// on $PATH or at the explicit path given.
func IsCmdNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
