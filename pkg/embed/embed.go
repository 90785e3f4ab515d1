// Package embed turns text into embedding vectors and compares them.
package embed

import (
	"context"
)

type Request struct {
	Text string `json:"text"`
	// Model overrides the adapter's default model when set.
	Model string `json:"model,omitempty"`
}

type Embedding struct {
	Model    string    `json:"model"`
	Provider string    `json:"provider"`
	Vector   []float32 `json:"embedding"`
}

// Adapter talks to an embeddings provider.
type Adapter interface {
	Embed(ctx context.Context, req Request) (Embedding, error)
}

type AdapterFunc func(ctx context.Context, req Request) (Embedding, error)

func (f AdapterFunc) Embed(ctx context.Context, req Request) (Embedding, error) {
	return f(ctx, req)
}
