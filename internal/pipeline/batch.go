package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// PreprocessBatch preprocesses sentences concurrently. The output keeps the
// input order; the first failing sentence cancels the rest.
func (p *Pipeline) PreprocessBatch(ctx context.Context, sentences []string, direction string) ([]string, error) {
	return p.batch(ctx, sentences, direction, p.Preprocess)
}

// PostprocessBatch postprocesses model outputs concurrently in input order.
func (p *Pipeline) PostprocessBatch(ctx context.Context, outputs []string, direction string) ([]string, error) {
	return p.batch(ctx, outputs, direction, p.Postprocess)
}

func (p *Pipeline) batch(
	ctx context.Context,
	in []string,
	direction string,
	fn func(string, string) (string, error),
) ([]string, error) {
	// Resolve once so an unknown direction fails before any work starts.
	_, err := p.reg.Direction(direction)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(in))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, s := range in {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := fn(s, direction)
			if err != nil {
				return fmt.Errorf("sentence %d: %w", i, err)
			}

			out[i] = res
			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		return nil, err
	}

	// Cancellation observed before any goroutine failed.
	err = ctx.Err()
	if err != nil {
		return nil, err
	}

	return out, nil
}
