package cache

import (
	"context"
	"errors"
	"testing"
)

type countingEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (e *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = e.vec
	}
	return out, e.err
}

func (e *countingEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	e.calls++
	return e.vec, e.err
}

func TestEmbedQueryCachesRepeatQueries(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1, 0.2}}
	cached, err := NewCachedEmbedder(inner, 8)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	for i := 0; i < 3; i++ {
		vec, err := cached.EmbedQuery(context.Background(), "same query")
		if err != nil {
			t.Fatalf("EmbedQuery() error = %v", err)
		}
		if len(vec) != 2 {
			t.Fatalf("unexpected vector: %v", vec)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected a single upstream call, got %d", inner.calls)
	}
}

func TestEmbedQueryDoesNotCacheFailures(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("model down")}
	cached, err := NewCachedEmbedder(inner, 8)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := cached.EmbedQuery(context.Background(), "q"); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Fatalf("expected failures to pass through uncached, got %d calls", inner.calls)
	}
}

func TestEmbedEvictsOldestEntries(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	cached, err := NewCachedEmbedder(inner, 1)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	if _, err := cached.EmbedQuery(context.Background(), "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.EmbedQuery(context.Background(), "second"); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.EmbedQuery(context.Background(), "first"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected eviction to force re-embedding, got %d calls", inner.calls)
	}
}
