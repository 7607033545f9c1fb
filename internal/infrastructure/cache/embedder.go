package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gaffoor434/knowledge-base/internal/core/ports"
)

// CachedEmbedder memoizes query embeddings in a fixed-size LRU. Query
// expansion re-embeds the same sub-queries across requests, so a small
// cache removes most repeat round trips to the embedding model.
//
// Only single-query embeddings are cached; batch document embedding runs
// once per document and would only churn the cache.
type CachedEmbedder struct {
	inner ports.Embedder
	cache *lru.Cache[string, []float32]
}

func NewCachedEmbedder(inner ports.Embedder, size int) (*CachedEmbedder, error) {
	c, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{inner: inner, cache: c}, nil
}

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.inner.Embed(ctx, texts)
}

func (e *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.cache.Get(text); ok {
		return vec, nil
	}
	vec, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	if vec != nil {
		e.cache.Add(text, vec)
	}
	return vec, nil
}
