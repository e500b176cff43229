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
	"io/fs"
	"os"
	"path/filepath"

	"github.com/coreos/pkg/multierror"
	"github.com/pkg/errors"

	"github.com/coreos/cctest/harness/testcase"
)

// Janitor removes transient binaries left under a set of directories.
// Binaries survive a run only if it is interrupted between a compile
// finishing and its program being run.
type Janitor struct {
	Roots []string

	// Pattern is matched against file names with filepath.Match.
	Pattern string
}

func NewJanitor(roots ...string) *Janitor {
	return &Janitor{
		Roots:   roots,
		Pattern: testcase.BinaryName,
	}
}

// Sweep deletes every matching file under the roots and returns how many
// were removed. A root that does not exist is skipped.
func (j *Janitor) Sweep() (int, error) {
	var (
		removed int
		errs    multierror.Error
	)
	for _, root := range j.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root && os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			match, err := filepath.Match(j.Pattern, d.Name())
			if err != nil || !match {
				return err
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				errs = append(errs, err)
				return nil
			}
			plog.Debugf("removed %s", path)
			removed++
			return nil
		})
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "sweeping %s", root))
		}
	}
	return removed, errs.AsError()
}
