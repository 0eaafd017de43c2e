// Copyright 2025 walteh LLC
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

package operation

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// 🏃 copyRunner executes planned copies with bounded concurrency
type copyRunner struct {
	workers int
}

// 🏗️ newCopyRunner creates a runner; workers below 1 run sequentially
func newCopyRunner(workers int) *copyRunner {
	if workers < 1 {
		workers = 1
	}
	return &copyRunner{workers: workers}
}

// 🏃 Run copies every planned file. The first failure stops copies that have
// not started yet and is returned.
func (r *copyRunner) Run(ctx context.Context, copies []plannedCopy) error {
	if r.workers == 1 {
		return r.runSync(ctx, copies)
	}
	return r.runAsync(ctx, copies)
}

// 🔄 runSync copies in plan order
func (r *copyRunner) runSync(ctx context.Context, copies []plannedCopy) error {
	for _, c := range copies {
		if err := c.execute(); err != nil {
			return err
		}
	}
	return nil
}

// ⚡ runAsync copies with up to r.workers files in flight
func (r *copyRunner) runAsync(ctx context.Context, copies []plannedCopy) error {
	// only a failed copy stops the others
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(r.workers)

	for _, c := range copies {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			return c.execute()
		})
	}

	return g.Wait()
}
