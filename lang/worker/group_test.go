// Copyright 2016 CoreOS, Inc.
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

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerGroupLimit(t *testing.T) {
	const limit = 3
	wg := NewWorkerGroup(context.Background(), limit)

	var running, peak int32
	for i := 0; i < 20; i++ {
		err := wg.Start(func(context.Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		})
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if a := wg.Active(); a > limit {
			t.Errorf("%d active workers, limit %d", a, limit)
		}
	}
	if err := wg.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if peak > limit || peak == 0 {
		t.Errorf("peak concurrency %d, limit %d", peak, limit)
	}
}

func TestWorkerGroupError(t *testing.T) {
	wg := NewWorkerGroup(context.Background(), 2)
	boom := errors.New("boom")
	if err := wg.Start(func(context.Context) error { return boom }); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	err := wg.Wait()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if err := wg.Start(func(context.Context) error { return nil }); err == nil {
		t.Errorf("Start succeeded after the group was closed")
	}
}

func TestWorkerGroupCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wg := NewWorkerGroup(ctx, 1)
	started := make(chan struct{})
	if err := wg.Start(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-started
	cancel()
	err := wg.Start(func(context.Context) error { return nil })
	if err != context.Canceled {
		t.Errorf("Start after cancel returned %v", err)
	}
	if werr := wg.WaitError(err); werr != context.Canceled {
		t.Errorf("WaitError returned %v", werr)
	}
}
