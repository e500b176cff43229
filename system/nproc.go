// Copyright 2020 Red Hat, Inc.
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

package system

import (
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"

	"github.com/coreos/cctest/system/exec"
)

var plog = capnslog.NewPackageLogger("github.com/coreos/cctest", "system")

// cgroup files consulted for a CPU quota, overridable in tests.
var (
	cgroupV2CPUMax   = "/sys/fs/cgroup/cpu.max"
	cgroupV1CPUQuota = "/sys/fs/cgroup/cpu/cpu.cfs_quota_us"
	cgroupV1CPUPer   = "/sys/fs/cgroup/cpu/cpu.cfs_period_us"
)

// GetProcessors returns a count for number of cores we should use;
// this is the default number of compilers kept running at once.
func GetProcessors() (uint, error) {
	// Get available CPU count, including sched_getaffinity()
	nprocBuf, err := exec.Command("nproc").Output()
	if err != nil {
		return 0, errors.Wrap(err, "executing nproc")
	}
	nproc, err := strconv.ParseUint(strings.TrimSpace(string(nprocBuf)), 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "parsing nproc output")
	}

	quota, err := getCPUQuota()
	if err != nil {
		return 0, err
	}

	if quota < uint(nproc) {
		return quota, nil
	}
	return uint(nproc), nil
}

// DefaultParallel is GetProcessors with a fallback to the Go runtime's
// view of the host for systems without nproc or a readable cgroup.
func DefaultParallel() int {
	n, err := GetProcessors()
	if err != nil || n == 0 {
		plog.Debugf("falling back to runtime.NumCPU: %v", err)
		return runtime.NumCPU()
	}
	return int(n)
}

func getCPUQuota() (uint, error) {
	// cgroups v2
	buf, err := os.ReadFile(cgroupV2CPUMax)
	if err == nil {
		return parseCPUMax(string(buf))
	} else if !os.IsNotExist(err) {
		return 0, errors.Wrap(err, "reading cpu.max")
	}

	// cgroups v1
	buf, err = os.ReadFile(cgroupV1CPUQuota)
	if os.IsNotExist(err) {
		return math.MaxUint, nil
	} else if err != nil {
		return 0, errors.Wrap(err, "reading cpu.cfs_quota_us")
	}
	// can be -1
	quota, err := strconv.ParseInt(strings.TrimSpace(string(buf)), 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "invalid CPU quota")
	}
	buf, err = os.ReadFile(cgroupV1CPUPer)
	if os.IsNotExist(err) {
		return math.MaxUint, nil
	} else if err != nil {
		return 0, errors.Wrap(err, "reading cpu.cfs_period_us")
	}
	period, err := strconv.ParseUint(strings.TrimSpace(string(buf)), 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "invalid CPU period")
	}
	return roundQuota(quota, period), nil
}

// parseCPUMax parses the cgroups v2 "$MAX $PERIOD" format.
func parseCPUMax(s string) (uint, error) {
	vals := strings.SplitN(strings.TrimSpace(s), " ", 2)
	if len(vals) != 2 {
		return 0, errors.Errorf("invalid cpu.max value %q", s)
	}
	if vals[0] == "max" {
		return math.MaxUint, nil
	}
	quota, err := strconv.ParseInt(vals[0], 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "invalid CPU quota")
	}
	period, err := strconv.ParseUint(vals[1], 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "invalid CPU period")
	}
	return roundQuota(quota, period), nil
}

func roundQuota(quota int64, period uint64) uint {
	if quota > 0 && period > 0 {
		return uint((uint64(quota) + period - 1) / period)
	}
	return math.MaxUint
}
