// Package batch scores many vectors concurrently.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"context-cvss4/cvss"
)

// Item is the outcome for one input vector. Error is set instead of Result
// when the vector could not be scored.
type Item struct {
	Input  string       `json:"input"`
	Result *cvss.Result `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// Options tunes ScoreAll.
type Options struct {
	// Workers bounds the number of concurrent scorers. Values below one
	// mean one.
	Workers int
	// Strict rejects vectors that are not complete, well formed CVSS v4.0.
	Strict bool
}

// ScoreAll scores vectors concurrently. Items keep the order of vectors.
// A failing vector is reported in its Item and does not stop the others.
// Only cancellation of ctx aborts the batch.
func ScoreAll(ctx context.Context, vectors []string, opts Options) ([]Item, error) {
	workers := max(opts.Workers, 1)
	items := make([]Item, len(vectors))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, vector := range vectors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items[i] = scoreOne(vector, opts.Strict)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func scoreOne(vector string, strict bool) Item {
	item := Item{Input: vector}
	if strict {
		if err := cvss.Validate(vector); err != nil {
			item.Error = err.Error()
			return item
		}
	}
	res, err := cvss.Score(vector)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	item.Result = &res
	return item
}
