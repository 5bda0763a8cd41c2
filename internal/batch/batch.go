package batch

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/karupanerura/calc/internal/expression"
	"github.com/karupanerura/calc/internal/types"
	"golang.org/x/sync/errgroup"
)

type Batch struct {
	Entries     []*Entry
	Concurrency int
	FailFast    bool
}

type Entry struct {
	Name      string
	Expr      *expression.Expr
	Valuation *types.Valuation
}

// Run evaluates every entry concurrently. Evaluation errors are recorded in
// the results unless FailFast is set, in which case the first one is returned
// and the remaining entries are skipped.
func (b *Batch) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, len(b.Entries))

	eg, ctx := errgroup.WithContext(ctx)
	if b.Concurrency > 0 {
		eg.SetLimit(b.Concurrency)
	}
	for i, entry := range b.Entries {
		i := i
		entry := entry
		eg.Go(func() error {
			results[i] = Result{
				Name:   entry.Name,
				Source: entry.Expr.Source,
				Tree:   entry.Expr.Root.String(),
			}
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return err
			}

			v, err := entry.Expr.Evaluate(entry.Valuation)
			if err != nil {
				results[i].Err = err
				if b.FailFast {
					return fmt.Errorf("%s: %w", entry.Name, err)
				}
				return nil
			}
			results[i].Value = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

type Result struct {
	Name   string
	Source string
	Tree   string
	Value  float64
	Err    error
}

var _ json.Marshaler = Result{}

func (r Result) MarshalJSON() ([]byte, error) {
	o := map[string]any{
		"name":       r.Name,
		"expression": r.Source,
		"tree":       r.Tree,
	}
	if r.Err != nil {
		o["error"] = types.ExceptionOf(r.Err)
	} else {
		o["result"] = types.JSONNumber(r.Value)
	}
	return json.Marshal(o)
}
