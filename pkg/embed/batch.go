package embed

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// EmbedBatch embeds texts with at most concurrency requests in flight
// (default 4). Results keep the order of texts. The first failure cancels
// the remaining requests.
func EmbedBatch(ctx context.Context, adapter Adapter, texts []string, concurrency int) ([]Embedding, error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]Embedding, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			e, err := adapter.Embed(ctx, Request{Text: text})
			if err != nil {
				return err
			}
			results[i] = e
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
