package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
	"github.com/gaffoor434/knowledge-base/internal/infrastructure/resilience"
)

// Client is a thin ollama HTTP client shared by the embedder, the answer
// generator and the query expander. All calls go through the resilience
// executor when one is configured.
type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel, embedModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.postJSON(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, chunks []domain.ScoredResult) (string, error) {
	return g.client.generateText(ctx, buildAnswerPrompt(question, chunks))
}

func (g *Generator) GenerateFromPrompt(ctx context.Context, prompt string) (string, error) {
	return g.client.generateText(ctx, prompt)
}

// Expander reformulates a question into a handful of search sub-queries via
// the generation model. Any failure degrades to searching with the original
// query alone; expansion is recall optimization, never a hard dependency.
type Expander struct {
	client        *Client
	maxSubqueries int
	logger        *slog.Logger
}

func NewExpander(client *Client, maxSubqueries int, logger *slog.Logger) *Expander {
	if maxSubqueries < 1 {
		maxSubqueries = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{client: client, maxSubqueries: maxSubqueries, logger: logger}
}

func (e *Expander) Expand(ctx context.Context, query string) []string {
	out := []string{query}
	if e.maxSubqueries <= 1 {
		return out
	}

	respText, err := e.client.generateJSON(ctx, buildExpansionPrompt(query, e.maxSubqueries-1))
	if err != nil {
		e.logger.Warn("query expansion failed, using original query only", "error", err)
		return out
	}

	var parsed struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &parsed); err != nil {
		e.logger.Warn("query expansion returned malformed json", "error", err)
		return out
	}

	seen := map[string]bool{normalizeQuery(query): true}
	for _, q := range parsed.Queries {
		q = strings.TrimSpace(q)
		if q == "" || seen[normalizeQuery(q)] {
			continue
		}
		seen[normalizeQuery(q)] = true
		out = append(out, q)
		if len(out) == e.maxSubqueries {
			break
		}
	}
	return out
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}
	return c.generate(ctx, reqBody)
}

func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
	}
	return c.generate(ctx, reqBody)
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
