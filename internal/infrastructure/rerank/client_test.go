package rerank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestAvailableProbesOnce(t *testing.T) {
	var probes int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			atomic.AddInt32(&probes, 1)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	for i := 0; i < 3; i++ {
		if !client.Available(context.Background()) {
			t.Fatal("expected reranker available")
		}
	}
	if got := atomic.LoadInt32(&probes); got != 1 {
		t.Fatalf("expected single health probe, got %d", got)
	}
}

func TestAvailableFalseWhenUnconfigured(t *testing.T) {
	client := New("", nil)
	if client.Available(context.Background()) {
		t.Fatal("expected unconfigured reranker to report unavailable")
	}
}

func TestAvailableCachesFailedProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "starting up", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	if client.Available(context.Background()) {
		t.Fatal("expected failed probe to report unavailable")
	}
	server.Close()
	// Cached verdict holds even after the server goes away entirely.
	if client.Available(context.Background()) {
		t.Fatal("expected cached unavailable verdict")
	}
}

func TestRerankReturnsAlignedScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"scores":[0.12,0.87]}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	scores, err := client.Rerank(context.Background(), "query", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if len(scores) != 2 || scores[1] != 0.87 {
		t.Fatalf("unexpected scores: %v", scores)
	}
}

func TestRerankRejectsScoreCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"scores":[0.5]}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	if _, err := client.Rerank(context.Background(), "query", []string{"a", "b"}); err == nil {
		t.Fatal("expected mismatch error")
	}
}
