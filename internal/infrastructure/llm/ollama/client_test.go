package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

func TestGeneratorBuildsContextPrompt(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		capturedPrompt, _ = payload["prompt"].(string)
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed", nil)
	gen := NewGenerator(client)
	chunks := []domain.ScoredResult{
		{DocumentName: "a.txt", Text: "chunk text", PageNumber: 4, Weighted: 0.99},
	}
	_, err := gen.GenerateAnswer(context.Background(), "question?", chunks)
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if !strings.Contains(capturedPrompt, "question?") || !strings.Contains(capturedPrompt, "chunk text") {
		t.Fatalf("unexpected prompt: %s", capturedPrompt)
	}
	if !strings.Contains(capturedPrompt, "page=4") {
		t.Fatalf("expected page reference in prompt, got: %s", capturedPrompt)
	}
}

func TestEmbedIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed", nil)
	embedder := NewEmbedder(client)
	_, err := embedder.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected retryable gateway failure marked temporary, got %v", err)
	}
}

func TestExpanderParsesSubqueries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"{\"queries\":[\"vacation policy rules\",\"How many vacation days?\",\"vacation policy rules\"]}"}`))
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed", nil)
	expander := NewExpander(client, 3, nil)
	queries := expander.Expand(context.Background(), "How many vacation days?")

	if len(queries) != 2 {
		t.Fatalf("expected original + 1 distinct subquery, got %v", queries)
	}
	if queries[0] != "How many vacation days?" {
		t.Fatalf("expected original query first, got %v", queries)
	}
	if queries[1] != "vacation policy rules" {
		t.Fatalf("expected deduped subquery, got %v", queries)
	}
}

func TestExpanderFallsBackOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no model", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, "gen", "embed", nil)
	expander := NewExpander(client, 3, nil)
	queries := expander.Expand(context.Background(), "original question")

	if len(queries) != 1 || queries[0] != "original question" {
		t.Fatalf("expected fallback to original query, got %v", queries)
	}
}
