// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/js-arias/phyfix/tree"
	"golang.org/x/sync/errgroup"
)

// RunAll reconciles a set of trees.
// Each tree is reconciled by a single goroutine,
// and up to cpu trees are reconciled at the same time.
// If cpu is zero or negative,
// the number of CPUs is used.
//
// The results are returned in the same order
// as the trees.
// On the first error,
// or when the context is cancelled,
// no more trees are started.
func RunAll(ctx context.Context, ts []*tree.Tree, p Param, logger *slog.Logger, cpu int) ([]Result, error) {
	if cpu <= 0 {
		cpu = runtime.NumCPU()
	}

	res := make([]Result, len(ts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cpu)
	for i, t := range ts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := Run(t, p, logger)
			if err != nil {
				return fmt.Errorf("tree %q: %w", t.Name(), err)
			}
			res[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
